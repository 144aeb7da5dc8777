/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"

	"github.com/zalando/go-keyring"
)

// ErrNoToken is returned when the keychain holds no backend token.
var ErrNoToken = errors.New("no backend token stored")

var (
	keyringGet = func(service, key string) (string, error) {
		v, err := keyring.Get(service, key)
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNoToken
		}
		return v, err
	}
	keyringSet    = keyring.Set
	keyringDelete = func(service, key string) error {
		err := keyring.Delete(service, key)
		if errors.Is(err, keyring.ErrNotFound) {
			return nil
		}
		return err
	}
)
