package main

import "github.com/chzyer/readline"

func newReadline() (*readline.Instance, error) {
	return readline.NewEx(&readline.Config{
		Prompt:          "judgectl> ",
		HistoryFile:     "/tmp/judgectl/history",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
}
