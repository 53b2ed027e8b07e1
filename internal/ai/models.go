package ai

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Model metadata and simple pricing helpers for prompt budgeting.
// Prices are illustrative and should be verified against the provider docs.

type ModelInfo struct {
	Name          string
	Provider      string
	ContextTokens int     // approximate context window
	InputPerK     float64 // USD per 1K input tokens
	OutputPerK    float64 // USD per 1K output tokens
}

var models = map[string]ModelInfo{
	"openai/gpt-4o-mini": {
		Name:          "openai/gpt-4o-mini",
		Provider:      ProviderOpenRouter,
		ContextTokens: 128000,
		InputPerK:     0.0006,
		OutputPerK:    0.0024,
	},
	"openai/gpt-4.1-mini": {
		Name:          "openai/gpt-4.1-mini",
		Provider:      ProviderOpenRouter,
		ContextTokens: 128000,
		InputPerK:     0.0005,
		OutputPerK:    0.0015,
	},
	"anthropic/claude-3-haiku": {
		Name:          "anthropic/claude-3-haiku",
		Provider:      ProviderOpenRouter,
		ContextTokens: 200000,
		InputPerK:     0.00025,
		OutputPerK:    0.00125,
	},
	"deepseek/deepseek-r1:free": {
		Name:          "deepseek/deepseek-r1:free",
		Provider:      ProviderOpenRouter,
		ContextTokens: 128000,
	},
	"google/gemini-2.0-flash-001": {
		Name:          "google/gemini-2.0-flash-001",
		Provider:      ProviderOpenRouter,
		ContextTokens: 1000000,
		InputPerK:     0.0001,
		OutputPerK:    0.0004,
	},
	"gemini-2.0-flash": {
		Name:          "gemini-2.0-flash",
		Provider:      ProviderGemini,
		ContextTokens: 1000000,
		InputPerK:     0.0001,
		OutputPerK:    0.0004,
	},
	"gemini-1.5-flash": {
		Name:          "gemini-1.5-flash",
		Provider:      ProviderGemini,
		ContextTokens: 1000000,
		InputPerK:     0.000075,
		OutputPerK:    0.0003,
	},
	"llama3.1:8b-instruct": {
		Name:          "llama3.1:8b-instruct",
		Provider:      ProviderOllama,
		ContextTokens: 8192,
	},
	"mistral:7b-instruct": {
		Name:          "mistral:7b-instruct",
		Provider:      ProviderOllama,
		ContextTokens: 8192,
	},
	"phi3:mini-4k-instruct": {
		Name:          "phi3:mini-4k-instruct",
		Provider:      ProviderOllama,
		ContextTokens: 4096,
	},
}

// LookupModel returns ModelInfo and ok flag.
func LookupModel(name string) (ModelInfo, bool) {
	mi, ok := models[name]
	return mi, ok
}

// EstimateCostUSD estimates total cost in USD for given tokens using model pricing.
// If the model is unknown, returns 0 and ok=false.
func EstimateCostUSD(model string, promptTokens, completionTokens int) (float64, bool) {
	mi, ok := LookupModel(model)
	if !ok {
		return 0, false
	}
	inCost := (float64(promptTokens) / 1000.0) * mi.InputPerK
	outCost := (float64(completionTokens) / 1000.0) * mi.OutputPerK
	return inCost + outCost, true
}

// LoadCatalogFromJSON loads a JSON object map[string]ModelInfo from a file path.
// Example entry:
// { "gemini-2.0-flash": {"Name":"gemini-2.0-flash","Provider":"gemini","ContextTokens":1000000} }
func LoadCatalogFromJSON(path string) (map[string]ModelInfo, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m map[string]ModelInfo
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("decode model catalog %s: %w", path, err)
	}
	return m, nil
}

// MergeCatalog merges/overrides entries in the in-memory catalog.
func MergeCatalog(m map[string]ModelInfo) {
	for k, v := range m {
		if v.Name == "" {
			v.Name = k
		}
		models[k] = v
	}
}

// Catalog returns the catalog entries sorted by provider, then name.
func Catalog() []ModelInfo {
	out := make([]ModelInfo, 0, len(models))
	for _, v := range models {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Provider != out[j].Provider {
			return out[i].Provider < out[j].Provider
		}
		return out[i].Name < out[j].Name
	})
	return out
}
