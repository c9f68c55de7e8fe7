// Copyright 2025 the arcport authors
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

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"arcport/pkg/report"
)

func main() {
	// A .env beside the working directory may supply ARCPORT_INPUT and
	// ARCPORT_OUTPUT; missing files are fine.
	_ = godotenv.Load()

	exitCode := report.ExitSuccess
	rootCmd := newRootCmd(&exitCode)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "arcport:", err)
		exitCode = report.ExitFatal
	}

	os.Exit(exitCode)
}
