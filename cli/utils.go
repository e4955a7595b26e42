// Copyright (c) Mainflux
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"encoding/json"
	"fmt"

	"github.com/MainfluxLabs/storefront/realtime"
	"github.com/fatih/color"
	prettyjson "github.com/hokaccha/go-prettyjson"
)

const maskedLen = 6

var (
	// RawOutput raw output mode
	RawOutput bool = false
)

func logJSON(iList ...any) {
	for _, i := range iList {
		m, err := json.Marshal(i)
		if err != nil {
			logError(err)
			return
		}

		if RawOutput {
			fmt.Println(string(m))
			continue
		}

		pj, err := prettyjson.Format(m)
		if err != nil {
			logError(err)
			return
		}

		fmt.Printf("\n%s\n\n", string(pj))
	}
}

func logUsage(u string) {
	fmt.Printf(color.YellowString("\nusage: %s\n\n"), u)
}

func logError(err error) {
	boldRed := color.New(color.FgRed, color.Bold)
	boldRed.Print("\nerror: ")

	fmt.Printf("%s\n\n", color.RedString(err.Error()))
}

func logOK() {
	fmt.Printf("\n%s\n\n", color.BlueString("ok"))
}

func logInfo(msg string) {
	fmt.Printf("%s\n", color.CyanString(msg))
}

func logStatus(st realtime.Status) {
	line := fmt.Sprintf("connection %s", st.State)
	switch {
	case st.AuthError:
		fmt.Println(color.RedString("%s: %s", line, st.LastError))
	case st.Connected:
		fmt.Println(color.GreenString("%s", line))
	default:
		fmt.Println(color.YellowString("%s", line))
	}
}

// mask hides all but the head of a token.
func mask(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= maskedLen {
		return "***"
	}

	return token[:maskedLen] + "..."
}
