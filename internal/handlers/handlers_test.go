package handlers

import (
	"log/slog"
	"os"

	"github.com/calebdray/storywalk/pkg/progression"
	"github.com/calebdray/storywalk/pkg/puzzle"
	"github.com/calebdray/storywalk/pkg/storage"
	"github.com/calebdray/storywalk/pkg/story"
)

// Shared fixtures for handler tests.

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError, // Reduce noise in tests
	}))
}

var testCatalog = progression.Catalog{
	{Key: "story_8", Kind: progression.KindStory, TargetID: "8", Cost: 10, Title: "Cascades Female Factory"},
	{Key: "xw_extra_1", Kind: progression.KindExtra, TargetID: "extra_1", Cost: 5, Title: "Blossom Shrine — Extra"},
}

func newTestEnv() (*storage.Mock, *progression.Service) {
	mock := storage.NewMock()
	mock.SetStories([]story.Pin{
		{ID: "1", Title: "Blossom Shrine", Lat: -42.8828, Lng: 147.3252, Description: "A small wooden pavilion."},
		{ID: "8", Title: "Cascades Female Factory", Gated: true, Description: "A former women's prison."},
	})
	mock.SetPuzzles([]puzzle.Puzzle{
		{Key: "main_1", Kind: puzzle.KindMain, StoryID: "1", Title: "Blossom Shrine", Question: "Which flower?", Answer: "LOTUS"},
		{Key: "extra_1", Kind: puzzle.KindExtra, Title: "Blossom Shrine — Extra", Question: "What was Saya?", Answer: "ORACLE"},
	})
	service := progression.NewService(mock, testCatalog, testLogger())
	return mock, service
}
