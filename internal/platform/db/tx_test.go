package db

import (
	"context"
	"testing"
)

func TestTxFromContext_Empty(t *testing.T) {
	if tx := TxFromContext(context.Background()); tx != nil {
		t.Error("expected nil transaction for empty context")
	}
}

func TestTxFromContext_WrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), txKey, "not a tx")
	if tx := TxFromContext(ctx); tx != nil {
		t.Error("expected nil transaction for mismatched value type")
	}
}
