package format

import (
	"bytes"
	"testing"
)

type payload struct {
	Name   string   `json:"name"`
	Amount float64  `json:"amount"`
	Tags   []string `json:"tags"`
	Paid   bool     `json:"isPaid"`
	Note   *string  `json:"note"`
}

func TestWrite_JSON(t *testing.T) {
	var b bytes.Buffer
	if err := Write(&b, payload{Name: "Logo <v2>", Amount: 1500.5}, "", false); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := `{"name":"Logo <v2>","amount":1500.5,"tags":null,"isPaid":false,"note":null}` + "\n"
	if got := b.String(); got != want {
		t.Fatalf("json:\n got %q\nwant %q", got, want)
	}
}

func TestWrite_EDN(t *testing.T) {
	var b bytes.Buffer
	v := payload{Name: "Logo", Amount: 1500.5, Tags: []string{"a", "b"}, Paid: true}
	if err := Write(&b, v, "EDN", false); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := `{:amount 1500.5 :isPaid true :name "Logo" :note nil :tags ["a" "b"]}` + "\n"
	if got := b.String(); got != want {
		t.Fatalf("edn:\n got %q\nwant %q", got, want)
	}
}

func TestWrite_EDNPretty(t *testing.T) {
	var b bytes.Buffer
	if err := Write(&b, map[string]any{"rows": []int{1}, "empty": []int{}}, "edn", true); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := "{\n  :empty []\n  :rows [\n    1\n  ]\n}\n"
	if got := b.String(); got != want {
		t.Fatalf("pretty edn:\n got %q\nwant %q", got, want)
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	if err := Write(&bytes.Buffer{}, 1, "yaml", false); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}
