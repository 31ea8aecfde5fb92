// SPDX-License-Identifier: Apache-2.0
package main

import (
	"log"
	"os"

	"github.com/tliron/commonlog"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"ori/internal/lsp"
)

const lsName = "ori"

var (
	version = "0.0.1"
	handler protocol.Handler
)

func main() {
	commonlog.Configure(1, nil)

	oriHandler := lsp.NewOriHandler()

	handler = protocol.Handler{
		Initialize:            oriHandler.Initialize,
		Initialized:           oriHandler.Initialized,
		Shutdown:              oriHandler.Shutdown,
		TextDocumentDidOpen:   oriHandler.TextDocumentDidOpen,
		TextDocumentDidClose:  oriHandler.TextDocumentDidClose,
		TextDocumentDidChange: oriHandler.TextDocumentDidChange,
	}

	s := server.NewServer(&handler, lsName, false)

	log.Println("Starting Ori LSP server...")

	if err := s.RunStdio(); err != nil {
		log.Println("Error starting Ori LSP server:", err)
		os.Exit(1)
	}
}
