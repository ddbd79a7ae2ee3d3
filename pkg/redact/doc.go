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

// Package redact removes sensitive values from collected text before it is
// archived.
//
// Two rule families are built in:
//
//   - secrets: lines carrying ACCESS_KEY, SECRET_KEY or PASSWORD
//     (case-insensitive) keep the key token, the rest of the line becomes
//     <CENSORED>. Applied to `config dump`.
//   - auth-keys: in `auth list`, the value after "key:" becomes <CENSORED>.
//
// Redaction is on by default and disabled with --uncensored. Binary payloads
// (anything that is not valid UTF-8) are never touched. Applying a rule set
// twice gives the same result as applying it once.
package redact
