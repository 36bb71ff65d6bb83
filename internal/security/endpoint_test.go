package security

import "testing"

func TestValidateEndpointURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"public ip literal", "https://203.0.113.10/blacklist.json", false},
		{"loopback literal", "http://127.0.0.1/overlay.json", true},
		{"ipv6 loopback", "http://[::1]/overlay.json", true},
		{"private 10.x", "http://10.0.0.5/overlay.json", true},
		{"private 192.168.x", "http://192.168.1.10/overlay.json", true},
		{"link local metadata", "http://169.254.169.254/latest/meta-data", true},
		{"unspecified", "http://0.0.0.0/overlay.json", true},
		{"localhost name", "http://localhost:8080/overlay.json", true},
		{"gcp metadata name", "http://metadata.google.internal/computeMetadata", true},
		{"ftp scheme", "ftp://feeds.example.com/overlay.json", true},
		{"no host", "http:///overlay.json", true},
		{"garbage", "not a url", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEndpointURL(tt.url)
			if tt.wantErr && err == nil {
				t.Errorf("ValidateEndpointURL(%q) = nil, want error", tt.url)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidateEndpointURL(%q) = %v, want nil", tt.url, err)
			}
		})
	}
}
