package e2e_test

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCLI runs the command with stdin and returns stdout, stderr and the run error.
func runCLI(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := exec.Command("go", append([]string{"run", "../../main.go"}, args...)...)
	cmd.Stdin = strings.NewReader(stdin)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// TestEndToEnd_ComplexNestedStructures tests the application with complex nested JSON structures
func TestEndToEnd_ComplexNestedStructures(t *testing.T) {
	tempDir := t.TempDir()

	jsonContent := `{
		"id": 12345,
		"config": {
			"enabled": true,
			"timeout_seconds": 30,
			"features": ["logging", "metrics", "alerting"],
			"rate_limits": {"per_second": 100, "burst": 150}
		},
		"users": [
			{"id": 1, "name": "Alice", "roles": ["admin", "user"], "metadata": {"login_count": 42}},
			{"id": 2, "name": "Bob", "roles": [], "metadata": {"login_count": 17, "last_login": "2023-05-18T09:15:00Z"}}
		],
		"stats": {"success_rate": 0.9999, "response_times": [0.045, 1, 0.032]},
		"updated_at": "2023-05-20T14:56:23Z"
	}`

	jsonFile := filepath.Join(tempDir, "complex.json")
	require.NoError(t, os.WriteFile(jsonFile, []byte(jsonContent), 0644))
	outputFile := filepath.Join(tempDir, "Complex.swift")

	_, stderr, err := runCLI(t, "", "-i", jsonFile, "-o", outputFile, "-r", "Complex")
	require.NoError(t, err, "CLI command failed: %s", stderr)

	generated, err := os.ReadFile(outputFile)
	require.NoError(t, err)

	expected := `struct Complex: Codable {
    let config: Config
    struct Config: Codable {
        let enabled: Bool
        let features: [String]
        let rate_limits: Rate_limits
        struct Rate_limits: Codable {
            let burst: Int
            let per_second: Int
        }
        let timeout_seconds: Int
    }
    let id: Int
    let stats: Stats
    struct Stats: Codable {
        let response_times: [Double]
        let success_rate: Double
    }
    let updated_at: String
    let users: [User]
    struct User: Codable {
        let id: Int
        let metadata: Metadata
        struct Metadata: Codable {
            let last_login: String?
            let login_count: Int
        }
        let name: String
        let roles: [String]
    }
}
`
	assert.Equal(t, expected, string(generated))
}

func TestEndToEnd_RootArrayHint(t *testing.T) {
	stdout, stderr, err := runCLI(t, `[{"id": 1}, {"id": 2, "tag": "x"}]`)
	require.NoError(t, err, stderr)

	assert.Contains(t, stdout, "struct NewType: Codable {")
	assert.Contains(t, stdout, "let tag: String?")
	assert.Contains(t, stderr, "[NewType]")
}

func TestEndToEnd_Query(t *testing.T) {
	stdout, stderr, err := runCLI(t,
		`{"data": {"items": [{"sku": "a", "qty": 1}, {"sku": "b", "qty": 2.5}]}}`,
		"-q", ".data.items[]", "-r", "Item")
	require.NoError(t, err, stderr)

	expected := `struct Item: Codable {
    let qty: Double
    let sku: String
}
`
	assert.Equal(t, expected, stdout)
}

func TestEndToEnd_JSONSchemaRoundTrip(t *testing.T) {
	schemaOut, stderr, err := runCLI(t, `{"id": 1, "tags": ["a"], "owner": {"name": "x"}}`, "--format", "jsonschema")
	require.NoError(t, err, stderr)
	assert.Contains(t, schemaOut, `"$schema"`)

	swiftOut, stderr, err := runCLI(t, schemaOut, "--from-schema")
	require.NoError(t, err, stderr)

	expected := `struct NewType: Codable {
    let id: Int
    let owner: Owner
    struct Owner: Codable {
        let name: String
    }
    let tags: [String]
}
`
	assert.Equal(t, expected, swiftOut)
}

func TestEndToEnd_EdgeCases(t *testing.T) {
	testCases := []struct {
		name     string
		json     string
		args     []string
		expected string
		isError  bool
	}{
		{
			name:     "EmptyObject",
			json:     `{}`,
			expected: "struct NewType: Codable {\n}\n",
		},
		{
			name:     "DeeplyNestedObject",
			json:     `{"level1":{"level2":{"level3":{"value":42}}}}`,
			expected: "            struct Level3: Codable {\n                let value: Int\n",
		},
		{
			name:     "DeeplyNestedArray",
			json:     `[[[{"value": 42}]]]`,
			expected: "let value: Int",
		},
		{
			name:     "StrictNumbers",
			json:     `{"n": [1, 2.5]}`,
			args:     []string{"--strict"},
			expected: "Incompatible types",
			isError:  true,
		},
		{name: "EmptyArray", json: `[]`, expected: "Invalid root type", isError: true},
		{name: "SingleValue", json: `"just a string"`, expected: "Invalid root type", isError: true},
		{name: "SingleNumber", json: `42`, expected: "Invalid root type", isError: true},
		{name: "OnlyNull", json: `{"a": null}`, expected: "Internal inconsistency", isError: true},
		{name: "InvalidJSON", json: `{"name": "Invalid JSON",}`, expected: "Error:", isError: true},
		{name: "MultipleValues", json: `{} {}`, expected: "Error:", isError: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			stdout, stderr, err := runCLI(t, tc.json, tc.args...)

			if tc.isError {
				assert.Error(t, err, "Expected an error for %s", tc.name)
				assert.Empty(t, stdout)
				assert.Contains(t, stderr, tc.expected)
			} else {
				assert.NoError(t, err, "Unexpected error for %s: %s", tc.name, stderr)
				assert.Contains(t, stdout, tc.expected, "Expected output not found for %s", tc.name)
			}
		})
	}
}
