package main

import (
	"flag"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"devopsrag/internal/apiclient"
	"devopsrag/internal/tui"
)

func main() {
	_ = godotenv.Load()

	backend := os.Getenv("RAG_BASE")
	if backend == "" {
		backend = "http://127.0.0.1:8001"
	}
	flag.StringVar(&backend, "backend", backend, "Base URL of the answering service")
	flag.Parse()

	m := tui.New(apiclient.New(backend))
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		log.Fatal(err)
	}
}
