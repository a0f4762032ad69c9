package audit

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"restaurant-hub/internal/models"
)

type failing struct{ err error }

func (f failing) Audit(context.Context, *models.EventMessage) error { return f.err }

func TestFileLogAppendsLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs.txt")

	for _, kind := range []string{"ORDER", "REMOVE_ORDER"} {
		l, err := OpenFile(path)
		if err != nil {
			t.Fatalf("OpenFile: %v", err)
		}
		msg := &models.EventMessage{ID: "id-" + kind, Kind: kind, OrderID: 7, Table: 3, Timestamp: time.Now()}
		if err := l.Audit(context.Background(), msg); err != nil {
			t.Fatalf("Audit: %v", err)
		}
		if err := l.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()

	var kinds []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var line map[string]interface{}
		if err := json.Unmarshal(scanner.Bytes(), &line); err != nil {
			t.Fatalf("line is not JSON: %q", scanner.Text())
		}
		if _, ok := line["timestamp"]; !ok {
			t.Fatalf("line without timestamp: %q", scanner.Text())
		}
		if line["order_id"].(float64) != 7 {
			t.Fatalf("order_id = %v", line["order_id"])
		}
		kinds = append(kinds, line["msg"].(string))
	}

	if len(kinds) != 2 || kinds[0] != "ORDER" || kinds[1] != "REMOVE_ORDER" {
		t.Fatalf("kinds = %v", kinds)
	}
}

func TestMultiJoinsErrors(t *testing.T) {
	first := errors.New("first")
	second := errors.New("second")
	m := Multi{failing{first}, failing{nil}, failing{second}}

	err := m.Audit(context.Background(), &models.EventMessage{Kind: "ORDER"})
	if !errors.Is(err, first) || !errors.Is(err, second) {
		t.Fatalf("err = %v", err)
	}
	if err := (Multi{failing{nil}}).Audit(context.Background(), &models.EventMessage{}); err != nil {
		t.Fatalf("err = %v", err)
	}
}
