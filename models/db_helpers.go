package models

// CountRecords returns count from a query
func CountRecords(query string, args ...interface{}) (int, error) {
	var count int
	err := db.QueryRow(query, args...).Scan(&count)
	return count, err
}
