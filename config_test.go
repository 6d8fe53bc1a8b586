package worker

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
)

func TestLoadConfig(t *testing.T) {
	testCases := []struct {
		name      string
		env       map[string]string
		content   string
		expectErr bool
		check     func(t *testing.T, cfg *Config)
	}{
		{
			name: "defaults applied",
			content: `
baseURL: http://conductor/api
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 500*time.Millisecond, cfg.PollInterval)
				assert.Equal(t, 1, cfg.BatchSize)
				assert.Equal(t, 100, cfg.Concurrency)
				assert.Equal(t, 100, cfg.QueueBuffer)
				assert.Equal(t, 24*time.Hour, cfg.StaleAfter)
				assert.Equal(t, "/metrics", cfg.Metrics.Path)
			},
		},
		{
			name: "env expansion",
			env:  map[string]string{"CONDUCTOR_URL": "http://conductor:8080/api", "REG_TOKEN": "t0k3n"},
			content: `
workerId: infer-1
baseURL: ${env.CONDUCTOR_URL}
registrationURL: http://vines
registrationToken: ${env.REG_TOKEN}
pollInterval: 250ms
batchSize: 4
concurrency: 8
domain: gpu
auth:
  username: worker
  password: secret
storage:
  bucketURL: s3://results
  baseURL: https://cdn.example.com
logging:
  level: debug
  format: console
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "infer-1", cfg.WorkerID)
				assert.Equal(t, "http://conductor:8080/api", cfg.BaseURL)
				assert.Equal(t, "t0k3n", cfg.RegistrationToken)
				assert.Equal(t, 250*time.Millisecond, cfg.PollInterval)
				assert.Equal(t, 4, cfg.BatchSize)
				assert.Equal(t, 8, cfg.QueueBuffer)
				assert.Equal(t, "gpu", cfg.Domain)
				require.NotNil(t, cfg.Auth)
				assert.Equal(t, "worker", cfg.Auth.Username)
				assert.Equal(t, "s3://results", cfg.Storage.BucketURL)
				assert.Equal(t, "console", cfg.Logging.Format)
			},
		},
		{
			name:      "missing base URL",
			content:   `workerId: w`,
			expectErr: true,
		},
		{
			name:      "invalid batch size",
			content:   "baseURL: http://c\nbatchSize: -1\n",
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			ctx := context.Background()
			URL := "mem://localhost/config/" + t.Name() + ".yaml"
			require.NoError(t, afs.New().Upload(ctx, URL, file.DefaultFileOsMode, bytes.NewReader([]byte(tc.content))))
			cfg, err := LoadConfig(ctx, URL)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tc.check(t, cfg)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, cfg.Validate())
	cfg.BaseURL = "http://conductor/api"
	assert.NoError(t, cfg.Validate())
	cfg.Auth = &AuthConfig{}
	assert.Error(t, cfg.Validate())
}
