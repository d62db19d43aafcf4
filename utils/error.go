package utils

import "errors"

var ErrorRecordNotFound = errors.New("record not found")

// ErrorMigrationOutOfOrder is fatal at startup: the recorded schema history does
// not line up with the registered migration list, so applying further steps
// could transform an assumed-but-wrong shape.
var ErrorMigrationOutOfOrder = errors.New("migration applied out of order")
