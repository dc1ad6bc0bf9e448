/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// screenwriterd is the thin sync server. Configuration comes from the
// environment; a local .env file is loaded first when present.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"goscreenwriter/internal/backend"
	applog "goscreenwriter/internal/log"
	"goscreenwriter/internal/version"
)

func main() {
	_ = godotenv.Load()
	applog.Init(applog.FromEnv())

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version", "--version", "-v":
			fmt.Println("screenwriterd " + version.String())
			return
		}
	}

	if err := backend.Start(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
