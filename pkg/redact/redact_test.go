// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package redact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const configDump = `WHO     MASK  LEVEL     OPTION                               VALUE                                     RO
global        basic     container_image                      quay.io/ceph/ceph@sha256:abc              *
client.rgw    advanced  rgw_s3_auth_use_keystone             true
client.rgw    advanced  rgw_keystone_admin_password          s3cr3t
mgr           advanced  mgr/dashboard/RGW_API_ACCESS_KEY     AKIAEXAMPLE                               *
mgr           advanced  mgr/dashboard/RGW_API_SECRET_KEY     wJalrXUtnFEMI                             *
`

const authList = `osd.0
	key: AQBvaBFhAAAAABAAx5M1UuJ9l0cJ2xR4c3lWZw==
	caps: [mgr] allow profile osd
	caps: [mon] allow profile osd
client.admin
	key: AQBvaBFhAAAAABAAy5M1UuJ9l0cJ2xR4c3lWZw==
	caps: [mds] allow *
`

func TestApply_Secrets(t *testing.T) {
	r := New(true)
	out, err := r.Apply([]byte(configDump), RuleSecrets)
	require.NoError(t, err)

	s := string(out)
	assert.Contains(t, s, "rgw_keystone_admin_password <CENSORED>\n")
	assert.Contains(t, s, "mgr/dashboard/RGW_API_ACCESS_KEY <CENSORED>\n")
	assert.Contains(t, s, "mgr/dashboard/RGW_API_SECRET_KEY <CENSORED>\n")
	assert.Contains(t, s, "rgw_s3_auth_use_keystone             true\n")
	assert.NotContains(t, s, "s3cr3t")
	assert.NotContains(t, s, "AKIAEXAMPLE")
	assert.NotContains(t, s, "wJalrXUtnFEMI")
}

func TestApply_AuthKeys(t *testing.T) {
	r := New(true)
	out, err := r.Apply([]byte(authList), RuleAuthKeys)
	require.NoError(t, err)

	s := string(out)
	assert.NotContains(t, s, "AQBvaBFh")
	assert.Contains(t, s, "\tkey: <CENSORED>\n")
	assert.Contains(t, s, "caps: [mon] allow profile osd\n")
	assert.Contains(t, s, "client.admin\n")
}

func TestApply_Disabled(t *testing.T) {
	r := New(false)
	out, err := r.Apply([]byte(authList), RuleAuthKeys)
	require.NoError(t, err)
	assert.Equal(t, authList, string(out))
}

func TestApply_BinaryUntouched(t *testing.T) {
	bin := []byte{0xff, 0xfe, 'k', 'e', 'y', ':', ' ', 's', 'e', 'c', 'r', 'e', 't', '\n'}
	out, err := New(true).Apply(bin, RuleAuthKeys)
	require.NoError(t, err)
	assert.Equal(t, bin, out)
}

func TestApply_UnknownRule(t *testing.T) {
	_, err := New(true).Apply([]byte("x"), "tokens")
	assert.Error(t, err)
}

func TestIdempotent(t *testing.T) {
	inputs := []string{
		configDump,
		authList,
		"password password password",
		"key: key: value",
		"PASSWORD <CENSORED>",
		"password_key: x",
		"",
		"\n\n",
	}
	r := New(true)
	for _, in := range inputs {
		once, err := r.Apply([]byte(in), RuleSecrets, RuleAuthKeys)
		require.NoError(t, err)
		twice, err := r.Apply(once, RuleSecrets, RuleAuthKeys)
		require.NoError(t, err)
		assert.Equal(t, string(once), string(twice), "input %q", in)
	}
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{RuleAuthKeys, RuleSecrets}, Names())
	_, ok := Lookup(RuleSecrets)
	assert.True(t, ok)
	_, ok = Lookup("nope")
	assert.False(t, ok)
}

func FuzzApplyIdempotent(f *testing.F) {
	f.Add(configDump)
	f.Add(authList)
	f.Add("key: key: x")
	f.Add("secret_key\npassword key: y")

	r := New(true)
	f.Fuzz(func(t *testing.T, in string) {
		for _, rules := range [][]string{{RuleSecrets}, {RuleAuthKeys}, {RuleSecrets, RuleAuthKeys}, {RuleAuthKeys, RuleSecrets}} {
			once, err := r.Apply([]byte(in), rules...)
			if err != nil {
				t.Fatal(err)
			}
			twice, err := r.Apply(once, rules...)
			if err != nil {
				t.Fatal(err)
			}
			if string(once) != string(twice) {
				t.Fatalf("rules %v not idempotent for %q:\nonce:  %q\ntwice: %q", rules, in, once, twice)
			}
		}
	})
}
