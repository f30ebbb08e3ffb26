// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package cmd

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/consensys/go-eccop/pkg/engine"
	"github.com/consensys/go-eccop/pkg/isa"
	"github.com/consensys/go-eccop/pkg/report"
)

// runCmd executes an assembled program on a freshly provisioned
// coprocessor, printing every report message it emits.
var runCmd = &cobra.Command{
	Use:   "run [flags] program_file",
	Short: "Execute a coprocessor program.",
	Long: `Assemble the given program, provision a coprocessor with its operand
image, run it to completion and print the drained report messages.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		cfg := engine.Config{
			OperandSlots: GetUint(cmd, "slots"),
			MemLatency:   GetUint64(cmd, "mem-latency"),
			ProgLatency:  GetUint64(cmd, "prog-latency"),
		}
		//
		if modulus := GetString(cmd, "modulus"); modulus != "" {
			var p big.Int
			//
			if _, ok := p.SetString(modulus, 0); !ok {
				fmt.Printf("bad modulus %q\n", modulus)
				os.Exit(2)
			}
			//
			cfg.Modulus = &p
		}
		//
		if err := runProgram(args[0], cfg); err != nil {
			fmt.Println(err)
			os.Exit(2)
		}
	},
}

func runProgram(filename string, cfg engine.Config) error {
	bytes, err := os.ReadFile(filename)
	if err != nil {
		return errors.Wrapf(err, "reading %s", filename)
	}
	//
	program, err := isa.Assemble(string(bytes))
	if err != nil {
		return errors.Wrapf(err, "assembling %s", filename)
	}
	//
	cop := engine.New(cfg)
	cop.Load(program)
	// Drain report messages concurrently with execution.
	var wg sync.WaitGroup
	//
	wg.Add(1)
	//
	go func() {
		defer wg.Done()
		printReports(cop.Out(), cop.Params().WordBytes())
	}()
	//
	err = cop.Run(context.Background())
	// Close flushes queued reports and ends the printer.
	cop.Close()
	wg.Wait()
	//
	if err != nil {
		return err
	}
	//
	status := cop.Status()
	log.WithFields(log.Fields{"pc": status.PC, "fault": status.Fault}).Debug("run complete")
	//
	if status.Fault {
		fmt.Println("arithmetic fault flagged")
	}
	//
	return nil
}

// printReports reassembles the beat stream into messages: a fixed header
// (tag, address) followed by the tag-determined payload words.
func printReports(out <-chan report.Beat, wordBytes int) {
	var message []byte
	//
	for beat := range out {
		message = append(message, beat.Data)
		//
		if !beat.Last {
			continue
		}
		//
		tag := isa.Tag(message[0])
		addr := uint(message[1])<<8 | uint(message[2])
		payload := message[report.HeaderBytes:]
		//
		fmt.Printf("report $%d %s", addr, tag)
		//
		for i := 0; i+wordBytes <= len(payload); i += wordBytes {
			word := new(big.Int).SetBytes(payload[i : i+wordBytes])
			fmt.Printf(" 0x%s", word.Text(16))
		}
		//
		fmt.Println()
		//
		message = nil
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Uint("slots", 256, "operand store size")
	runCmd.Flags().Uint64("mem-latency", 2, "operand store read latency (cycles)")
	runCmd.Flags().Uint64("prog-latency", 2, "program store fetch latency (cycles)")
	runCmd.Flags().String("modulus", "", "override the base-field modulus (default BLS12-381)")
}
