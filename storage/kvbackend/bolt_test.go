package kvbackend

import "testing"

func Test_splitKey(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantBucket string
		wantKey    string
		wantErr    bool
	}{
		{name: "Empty", input: "", wantErr: true},
		{name: "NoSlash", input: "accounts", wantErr: true},
		{name: "LeadingSlash", input: "/accounts/abc", wantErr: true},
		{name: "TrailingSlash", input: "accounts/", wantErr: true},
		{name: "Simple", input: "accounts/abc", wantBucket: "accounts", wantKey: "abc"},
		{name: "SplitsAtLastSlash", input: "snapshot/acc/v2", wantBucket: "snapshot/acc", wantKey: "v2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bucket, key, err := splitKey(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("splitKey(%q) returned nil error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("splitKey(%q) error = %v", tt.input, err)
			}
			if got := string(bucket); got != tt.wantBucket {
				t.Errorf("bucket = %q, want %q", got, tt.wantBucket)
			}
			if got := string(key); got != tt.wantKey {
				t.Errorf("key = %q, want %q", got, tt.wantKey)
			}
		})
	}
}
