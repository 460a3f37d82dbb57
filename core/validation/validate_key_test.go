package validation

import "testing"

func TestValidateAPIKey(t *testing.T) {
	tests := []struct {
		name    string
		apiKey  string
		wantErr bool
	}{
		{
			name:    "valid key",
			apiKey:  "sk-test1234567890",
			wantErr: false,
		},
		{
			name:    "empty key",
			apiKey:  "",
			wantErr: true,
		},
		{
			name:    "whitespace only",
			apiKey:  "   ",
			wantErr: true,
		},
		{
			name:    "too short",
			apiKey:  "short",
			wantErr: true,
		},
		{
			name:    "exactly minimum length",
			apiKey:  "12345678",
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAPIKey(tt.apiKey)
			if tt.wantErr && err == nil {
				t.Errorf("ValidateAPIKey(%q) expected error, got nil", tt.apiKey)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidateAPIKey(%q) unexpected error: %v", tt.apiKey, err)
			}
		})
	}
}

func TestValidateOpenAIAPIKey(t *testing.T) {
	// Gateway deployments use their own key formats, so anything passing
	// the generic check is accepted.
	if err := ValidateOpenAIAPIKey("sk-proj-abcdef1234567890"); err != nil {
		t.Errorf("hosted key rejected: %v", err)
	}
	if err := ValidateOpenAIAPIKey("local-gateway-key"); err != nil {
		t.Errorf("gateway key rejected: %v", err)
	}
	if err := ValidateOpenAIAPIKey(""); err == nil {
		t.Error("empty key accepted")
	}
}
