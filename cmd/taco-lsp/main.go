// SPDX-License-Identifier: Apache-2.0
package main

import (
	"os"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"taco/internal/lsp"
)

const lsName = "taco"

var (
	version = "0.1.0"
	handler protocol.Handler
)

func main() {
	// 1 = debug level, nil = log to stderr
	commonlog.Configure(1, nil)
	log := commonlog.GetLogger("taco.lsp")

	tacoHandler := lsp.NewTacoHandler()

	handler = protocol.Handler{
		Initialize:                     tacoHandler.Initialize,
		Initialized:                    tacoHandler.Initialized,
		Shutdown:                       tacoHandler.Shutdown,
		SetTrace:                       tacoHandler.SetTrace,
		TextDocumentDidOpen:            tacoHandler.TextDocumentDidOpen,
		TextDocumentDidClose:           tacoHandler.TextDocumentDidClose,
		TextDocumentDidChange:          tacoHandler.TextDocumentDidChange,
		TextDocumentSemanticTokensFull: tacoHandler.TextDocumentSemanticTokensFull,
	}

	s := server.NewServer(&handler, lsName, false)

	log.Infof("starting %s language server %s", lsName, version)

	if err := s.RunStdio(); err != nil {
		log.Errorf("language server stopped: %s", err)
		os.Exit(1)
	}
}
