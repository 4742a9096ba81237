// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/go-jose/go-jose/v4"
	josejwt "github.com/go-jose/go-jose/v4/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/youmark/pkcs8"

	"github.com/hashicorp/go-ghappjwt/internal/prompt"
	"github.com/hashicorp/go-ghappjwt/jwt"
)

const testClientID = "Iv23ctf7DOF0Tw7uHIsH"

var textOutputRE = regexp.MustCompile(`^JWT:  ([A-Za-z0-9_-]+\.[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+)\n$`)

var testKey *rsa.PrivateKey

func init() {
	var err error
	testKey, err = rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		panic(err)
	}
}

// clearEnv makes sure the caller's GHAPPJWT_* environment doesn't leak into
// a test; empty values are ignored by the config loader.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"CONFIG", "KEY_FILE", "PRIVATE_KEY", "CLIENT_ID", "PASSPHRASE", "MIN_KEY_BITS", "LOG_LEVEL", "FORMAT"} {
		t.Setenv("GHAPPJWT_"+k, "")
	}
}

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func pkcs1PEM(key *rsa.PrivateKey) []byte {
	return pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
}

type result struct {
	code int
	out  string
	err  string
}

func execute(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	var out, errOut bytes.Buffer
	code := Execute(Streams{
		In:   strings.NewReader(stdin),
		Out:  &out,
		Err:  &errOut,
		InFd: -1,
	}, args)
	return result{code: code, out: out.String(), err: errOut.String()}
}

func verifyToken(t *testing.T, token string) jwt.Claims {
	t.Helper()
	parsed, err := josejwt.ParseSigned(token, []jose.SignatureAlgorithm{jose.RS256})
	require.NoError(t, err)
	var claims jwt.Claims
	require.NoError(t, parsed.Claims(&testKey.PublicKey, &claims))
	assert.Equal(t, int64(600), claims.ExpiresAt-claims.IssuedAt)
	return claims
}

func TestExecute_Args(t *testing.T) {
	clearEnv(t)
	keyFile := writeTemp(t, "app.pem", pkcs1PEM(testKey))

	res := execute(t, "", keyFile, testClientID)
	require.Equal(t, 0, res.code, res.err)

	m := textOutputRE.FindStringSubmatch(res.out)
	require.NotNil(t, m, "unexpected output %q", res.out)
	claims := verifyToken(t, m[1])
	assert.Equal(t, testClientID, claims.Issuer)
	assert.Empty(t, res.err)
}

func TestExecute_Prompts(t *testing.T) {
	clearEnv(t)
	keyFile := writeTemp(t, "app.pem", pkcs1PEM(testKey))

	t.Run("both", func(t *testing.T) {
		res := execute(t, keyFile+"\n"+testClientID+"\n")
		require.Equal(t, 0, res.code, res.err)
		assert.Contains(t, res.err, prompt.KeyFileLabel)
		assert.Contains(t, res.err, prompt.ClientIDLabel)

		m := textOutputRE.FindStringSubmatch(res.out)
		require.NotNil(t, m, "unexpected output %q", res.out)
		assert.Equal(t, testClientID, verifyToken(t, m[1]).Issuer)
	})

	t.Run("client id only", func(t *testing.T) {
		res := execute(t, "123456\n", keyFile)
		require.Equal(t, 0, res.code, res.err)
		assert.NotContains(t, res.err, prompt.KeyFileLabel)
		assert.Contains(t, res.err, prompt.ClientIDLabel)

		m := textOutputRE.FindStringSubmatch(res.out)
		require.NotNil(t, m, "unexpected output %q", res.out)
		assert.Equal(t, "123456", verifyToken(t, m[1]).Issuer)
	})

	t.Run("no input", func(t *testing.T) {
		res := execute(t, "")
		assert.Equal(t, 1, res.code)
		assert.Empty(t, res.out)
		assert.Contains(t, res.err, "Error (input)")
	})
}

func TestExecute_Environment(t *testing.T) {
	clearEnv(t)
	oneLine := strings.ReplaceAll(strings.TrimSpace(string(pkcs1PEM(testKey))), "\n", `\n`)
	t.Setenv("GHAPPJWT_PRIVATE_KEY", oneLine)
	t.Setenv("GHAPPJWT_CLIENT_ID", testClientID)

	res := execute(t, "", "--format", "raw")
	require.Equal(t, 0, res.code, res.err)
	token := strings.TrimSuffix(res.out, "\n")
	require.Len(t, strings.Split(token, "."), 3)
	assert.Equal(t, testClientID, verifyToken(t, token).Issuer)
}

func TestExecute_ConfigFile(t *testing.T) {
	clearEnv(t)
	keyFile := writeTemp(t, "app.pem", pkcs1PEM(testKey))
	cfgFile := writeTemp(t, "ghappjwt.yaml", []byte("key_file: "+keyFile+"\nclient_id: from-file\nformat: json\n"))

	res := execute(t, "", "--config", cfgFile)
	require.Equal(t, 0, res.code, res.err)

	var got struct {
		Token string `json:"token"`
		jwt.Claims
	}
	require.NoError(t, json.Unmarshal([]byte(res.out), &got))
	assert.Equal(t, "from-file", got.Issuer)
	assert.Equal(t, verifyToken(t, got.Token), got.Claims)

	// positional arguments beat the file
	res = execute(t, "", "--config", cfgFile, keyFile, "from-args")
	require.Equal(t, 0, res.code, res.err)
	require.NoError(t, json.Unmarshal([]byte(res.out), &got))
	assert.Equal(t, "from-args", got.Issuer)
}

func TestExecute_EncryptedKey(t *testing.T) {
	clearEnv(t)
	der, err := pkcs8.MarshalPrivateKey(testKey, []byte("s3cret"), nil)
	require.NoError(t, err)
	keyFile := writeTemp(t, "app.pem", pem.EncodeToMemory(&pem.Block{Type: "ENCRYPTED PRIVATE KEY", Bytes: der}))

	res := execute(t, "s3cret\n", "--passphrase-prompt", keyFile, testClientID)
	require.Equal(t, 0, res.code, res.err)
	assert.Contains(t, res.err, prompt.PassphraseLabel)
	m := textOutputRE.FindStringSubmatch(res.out)
	require.NotNil(t, m, "unexpected output %q", res.out)
	verifyToken(t, m[1])

	res = execute(t, "", keyFile, testClientID)
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.err, "Error (key parse)")
}

func TestExecute_Errors(t *testing.T) {
	clearEnv(t)
	ecKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	ecDER, err := x509.MarshalECPrivateKey(ecKey)
	require.NoError(t, err)
	small, err := rsa.GenerateKey(rand.Reader, 1024)
	require.NoError(t, err)

	goodKey := writeTemp(t, "good.pem", pkcs1PEM(testKey))
	ecFile := writeTemp(t, "ec.pem", pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: ecDER}))
	emptyFile := writeTemp(t, "empty.pem", nil)
	smallFile := writeTemp(t, "small.pem", pkcs1PEM(small))

	tests := []struct {
		name     string
		args     []string
		category string
	}{
		{name: "missing file", args: []string{filepath.Join(t.TempDir(), "nope.pem"), testClientID}, category: "input"},
		{name: "empty file", args: []string{emptyFile, testClientID}, category: "key parse"},
		{name: "ec key", args: []string{ecFile, testClientID}, category: "key parse"},
		{name: "small key", args: []string{smallFile, testClientID}, category: "key parse"},
		{name: "bad format", args: []string{"--format", "xml", goodKey, testClientID}, category: "configuration"},
		{name: "too many args", args: []string{goodKey, testClientID, "extra"}, category: "usage"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := execute(t, "", tt.args...)
			assert.Equal(t, 1, res.code)
			assert.Empty(t, res.out)
			assert.Contains(t, res.err, "Error ("+tt.category+")")
		})
	}

	t.Run("small key allowed when the minimum is disabled", func(t *testing.T) {
		res := execute(t, "", "--min-key-bits", "0", smallFile, testClientID)
		assert.Equal(t, 0, res.code, res.err)
		assert.Regexp(t, textOutputRE, res.out)
	})
}

func TestExecute_LogLevel(t *testing.T) {
	clearEnv(t)
	keyFile := writeTemp(t, "app.pem", pkcs1PEM(testKey))

	res := execute(t, "", "--log-level", "debug", keyFile, testClientID)
	require.Equal(t, 0, res.code, res.err)
	assert.Contains(t, res.err, "loaded private key")
	assert.Contains(t, res.err, "issued token")
	assert.Contains(t, res.err, "token issued")
	assert.Regexp(t, textOutputRE, res.out)
}
