package certs

import (
	"crypto/x509"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCertificate(t *testing.T) {
	tests := []struct {
		setup      func(t *testing.T, s *Store)
		name       string
		regenerate bool
	}{
		{
			name:       "creates certificate when none exists",
			setup:      func(*testing.T, *Store) {},
			regenerate: true,
		},
		{
			name: "reuses valid certificate",
			setup: func(t *testing.T, s *Store) {
				t.Helper()
				_, err := s.Certificate()
				require.NoError(t, err)
			},
		},
		{
			name: "replaces corrupt files",
			setup: func(t *testing.T, s *Store) {
				t.Helper()
				require.NoError(t, os.MkdirAll(s.dir, 0700))
				require.NoError(t, os.WriteFile(s.certFile, []byte("garbage"), 0600))
				require.NoError(t, os.WriteFile(s.keyFile, []byte("garbage"), 0600))
			},
			regenerate: true,
		},
		{
			name: "replaces expired certificate",
			setup: func(t *testing.T, s *Store) {
				t.Helper()
				s.now = func() time.Time { return time.Now().Add(-2 * Validity) }
				_, err := s.Certificate()
				require.NoError(t, err)
				s.now = time.Now
			},
			regenerate: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore(t.TempDir() + "/tls")
			tt.setup(t, s)

			var before []byte
			certFile, _ := s.Paths()
			if raw, err := os.ReadFile(certFile); err == nil {
				before = raw
			}

			cert, err := s.Certificate()
			require.NoError(t, err)
			require.Len(t, cert.Certificate, 1)

			parsed, err := x509.ParseCertificate(cert.Certificate[0])
			require.NoError(t, err)
			assert.Equal(t, Organization, parsed.Subject.Organization[0])
			require.NoError(t, parsed.VerifyHostname("localhost"))
			require.NoError(t, parsed.VerifyHostname("127.0.0.1"))
			assert.True(t, parsed.NotAfter.After(time.Now().Add(Validity-time.Hour)))

			after, err := os.ReadFile(certFile)
			require.NoError(t, err)
			if tt.regenerate {
				assert.NotEqual(t, before, after)
			} else {
				assert.Equal(t, before, after)
			}
		})
	}
}

func TestKeyFilePermissions(t *testing.T) {
	s := NewStore(t.TempDir())
	_, err := s.Certificate()
	require.NoError(t, err)

	_, keyFile := s.Paths()
	info, err := os.Stat(keyFile)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}
