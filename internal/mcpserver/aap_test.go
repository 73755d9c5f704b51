package mcpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
)

func TestHandleRunJob_Success(t *testing.T) {
	c := newTestAAPCatalog(t, nil, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/job_templates/42/launch/" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"job": 101, "status": "pending"})
	})

	result, err := c.handleRunJob(context.Background(), newTestRequest(map[string]any{
		"template_id": 42,
		"extra_vars":  map[string]any{"target": "web"},
	}))
	if err != nil {
		t.Fatalf("handleRunJob: %v", err)
	}

	out := decodeResult(t, result)
	if out["job"] != float64(101) {
		t.Errorf("job = %v", out["job"])
	}
}

func TestHandleRunJob_MissingTemplate(t *testing.T) {
	c := newTestAAPCatalog(t, nil, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request must not reach the controller")
	})

	result, err := c.handleRunJob(context.Background(), newTestRequest(nil))
	if err != nil {
		t.Fatalf("handleRunJob: %v", err)
	}

	out := decodeResult(t, result)
	errObj, ok := out["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error result, got %v", out)
	}
	if errObj["code"] != "INVALID_PARAMS" {
		t.Errorf("code = %v", errObj["code"])
	}
}

func TestHandleGetInventory_UpstreamError(t *testing.T) {
	c := newTestAAPCatalog(t, nil, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"Not found."}`, http.StatusNotFound)
	})

	result, err := c.handleGetInventory(context.Background(), newTestRequest(map[string]any{
		"inventory_id": 999,
	}))
	if err != nil {
		t.Fatalf("handleGetInventory: %v", err)
	}

	out := decodeResult(t, result)
	errObj, ok := out["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error result, got %v", out)
	}
	if errObj["code"] != "UPSTREAM_ERROR" {
		t.Errorf("code = %v", errObj["code"])
	}
}

func TestHandleCreateJobTemplate_PromptDefaults(t *testing.T) {
	c := newTestAAPCatalog(t, nil, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if body["ask_credential_on_launch"] != true {
			t.Error("missing credential should enable ask_credential_on_launch")
		}
		if body["job_type"] != "run" {
			t.Errorf("job_type = %v", body["job_type"])
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"id": 7})
	})

	result, err := c.handleCreateJobTemplate(context.Background(), newTestRequest(map[string]any{
		"name":      "Deploy",
		"project":   1,
		"playbook":  "site.yml",
		"inventory": 2,
	}))
	if err != nil {
		t.Fatalf("handleCreateJobTemplate: %v", err)
	}

	out := decodeResult(t, result)
	if out["id"] != float64(7) {
		t.Errorf("id = %v", out["id"])
	}
}

func TestHandleListToolScopes(t *testing.T) {
	c := newTestAAPCatalog(t, nil, func(w http.ResponseWriter, r *http.Request) {})

	result, err := c.handleListToolScopes(context.Background(), newTestRequest(nil))
	if err != nil {
		t.Fatalf("handleListToolScopes: %v", err)
	}

	out := decodeResult(t, result)
	mapping, ok := out["tool_scope_mapping"].(map[string]any)
	if !ok {
		t.Fatalf("missing tool_scope_mapping: %v", out)
	}

	runJob, ok := mapping["run_job"].(map[string]any)
	if !ok {
		t.Fatal("run_job missing from scope mapping")
	}
	if runJob["required_scope"] != "execute:ansible" {
		t.Errorf("run_job scope = %v", runJob["required_scope"])
	}

	info, ok := mapping["health_check"].(map[string]any)
	if !ok {
		t.Fatal("health_check missing from scope mapping")
	}
	if info["required_scope"] != "none" {
		t.Errorf("health_check scope = %v", info["required_scope"])
	}

	if out["total_tools"] != float64(len(mapping)) {
		t.Errorf("total_tools = %v, mapping has %d", out["total_tools"], len(mapping))
	}
}

func TestHandleHealthCheck_ControllerDown(t *testing.T) {
	c := newTestAAPCatalog(t, nil, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})

	result, err := c.handleHealthCheck(context.Background(), newTestRequest(nil))
	if err != nil {
		t.Fatalf("handleHealthCheck: %v", err)
	}

	out := decodeResult(t, result)
	if out["status"] != "healthy" {
		t.Errorf("status = %v", out["status"])
	}
	if out["aap_connection"] == "ok" {
		t.Error("aap_connection should report the controller failure")
	}
}
