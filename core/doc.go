// Copyright 2025 Google LLC
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
//
// SPDX-License-Identifier: Apache-2.0

// Package core defines the contract between the gateway and the
// integrations it serves: the per-call [ActionContext], the
// [FunctionDefinition] every action exposes, the uniform [ActionResult]
// and the [Error] type with its status names.
//
// Integration code routes its service calls through [ExecuteAction],
// which turns returned errors, in-band failures and panics into failed
// results classified as validation, service or unexpected failures.
package core
