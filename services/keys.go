package services

import "strconv"

// Key layout in the KV store. Everything is namespaced per user by email;
// persisted transactions additionally carry the counter value.
func userKey(email string) string {
	return "user:" + email
}

func sessionKey(token string) string {
	return "session:" + token
}

func dataKey(email string) string {
	return "data:" + email
}

func transactionPrefix(email string) string {
	return "transaction:" + email + ":"
}

func transactionKey(email string, id int) string {
	return transactionPrefix(email) + strconv.Itoa(id)
}

func counterKey(email string) string {
	return "transaction_counter:" + email
}

func savedFlagKey(email string) string {
	return "has_saved_data:" + email
}
