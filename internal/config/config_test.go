package config

import "testing"

func setEnv(t *testing.T, kv map[string]string) {
	t.Helper()
	for k, v := range kv {
		t.Setenv(k, v)
	}
}

func validEnv() map[string]string {
	return map[string]string{
		"BASE_DOMAIN":      "example.com",
		"INTERNAL_NS":      "ns1.example.net,ns2.example.net.",
		"SUB_PDNS_URL":     "http://127.0.0.1:8081/api/v1",
		"SUB_PDNS_API_KEY": "sub-key",
		"BASE_PDNS_URL":    "http://127.0.0.1:8082/api/v1",
		"BASE_PDNS_API_KEY": "base-key",
	}
}

func TestLoadValid(t *testing.T) {
	setEnv(t, validEnv())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseDomain != "example.com" {
		t.Fatalf("unexpected base domain: %q", cfg.BaseDomain)
	}
	if len(cfg.InternalNS) != 2 || cfg.InternalNS[0] != "ns1.example.net." || cfg.InternalNS[1] != "ns2.example.net." {
		t.Fatalf("unexpected internal ns: %v", cfg.InternalNS)
	}
	if cfg.SubPDNS.ServerID != "localhost" {
		t.Fatalf("expected default server id, got %q", cfg.SubPDNS.ServerID)
	}
}

func TestLoadMissingBaseDomain(t *testing.T) {
	env := validEnv()
	delete(env, "BASE_DOMAIN")
	setEnv(t, env)

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing BASE_DOMAIN")
	}
}

func TestLoadMissingInternalNS(t *testing.T) {
	env := validEnv()
	delete(env, "INTERNAL_NS")
	setEnv(t, env)

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing INTERNAL_NS")
	}
}

func TestLoadMissingPDNSEndpoint(t *testing.T) {
	env := validEnv()
	delete(env, "SUB_PDNS_API_KEY")
	setEnv(t, env)

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing SUB_PDNS_API_KEY")
	}
}
