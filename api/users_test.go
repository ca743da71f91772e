package api

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"
)

func TestIsDuplicateKey(t *testing.T) {
	dup := mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000}}}
	if !isDuplicateKey(dup) {
		t.Error("expected code 11000 to be reported as duplicate key")
	}
	other := mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 2}}}
	if isDuplicateKey(other) {
		t.Error("code 2 is not a duplicate key error")
	}
	if isDuplicateKey(errors.New("network timeout")) {
		t.Error("plain error is not a duplicate key error")
	}
}
