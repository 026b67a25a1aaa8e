package main

import "docqa"

func buildEngine() (*docqa.Engine, error) {
	cfg := docqa.DefaultConfig()
	cfg.SnapshotPath = flagSnapshotPath
	cfg.DBPath = flagDBPath
	cfg.LLM.GenerateURL = flagGenerateURL
	cfg.LLM.EmbedURL = flagEmbedURL
	cfg.LLM.Model = flagModel
	cfg.SkipLLM = flagSkipLLM
	return docqa.New(cfg)
}
