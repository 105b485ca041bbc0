package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) (string, error) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return out.String(), err
}

func Test_Register(t *testing.T) {
	var got string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/nodes/register" {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		var body struct {
			Node string `json:"node"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		got = body.Node

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"message":"new node registered"}`))
	}))
	defer srv.Close()

	out, err := execute(t, "--url", srv.URL, "register", "127.0.0.1:5001")
	if err != nil {
		t.Fatalf("Should be able to register a node: %s", err)
	}

	if got != "127.0.0.1:5001" {
		t.Logf("got: %s", got)
		t.Logf("exp: %s", "127.0.0.1:5001")
		t.Fatalf("Should send the node address.")
	}

	if !strings.Contains(out, "new node registered") {
		t.Logf("got: %s", out)
		t.Fatalf("Should print the node response.")
	}
}

func Test_CallError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"error":"peer unreachable"}`))
	}))
	defer srv.Close()

	if _, err := execute(t, "--url", srv.URL, "resolve"); err == nil {
		t.Fatalf("Should get back an error for a failed response.")
	}
}

func Test_SignVerify(t *testing.T) {
	key := filepath.Join(t.TempDir(), "node.ecdsa")

	pub, err := execute(t, "--key", key, "keygen")
	if err != nil {
		t.Fatalf("Should be able to generate a key: %s", err)
	}
	pub = strings.TrimSpace(pub)

	out, err := execute(t, "--key", key, "sign", "1700000000.5")
	if err != nil {
		t.Fatalf("Should be able to sign a message: %s", err)
	}

	var sig string
	for _, line := range strings.Split(out, "\n") {
		if s, ok := strings.CutPrefix(line, "signature: "); ok {
			sig = s
		}
	}

	if _, err := execute(t, "verify", "1700000000.5", "--publickey", pub, "--signature", sig); err != nil {
		t.Fatalf("Should be able to verify the signature: %s", err)
	}

	if _, err := execute(t, "verify", "1700000000.6", "--publickey", pub, "--signature", sig); err == nil {
		t.Fatalf("Should not verify the signature of another message.")
	}
}
