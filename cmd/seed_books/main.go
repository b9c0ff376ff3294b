package main

import (
	"context"
	"log/slog"
	"os"

	"library-lending-service/internal/backend"
	"library-lending-service/internal/config"
	"library-lending-service/internal/lending"
)

var sampleBooks = []lending.NewBook{
	{ISBN: "9788380324648", Title: "Wiedźmin: Ostatnie życzenie", Author: "Andrzej Sapkowski", TotalCopies: 3},
	{ISBN: "9788324014555", Title: "Zbrodnia i kara", Author: "Fiodor Dostojewski", TotalCopies: 2},
	{ISBN: "9788376863204", Title: "Sapiens: Od zwierząt do bogów", Author: "Yuval Noah Harari", TotalCopies: 4},
	{ISBN: "9788378855858", Title: "Rok 1984", Author: "George Orwell", TotalCopies: 2},
	{ISBN: "9788381002341", Title: "Atomowe nawyki", Author: "James Clear", TotalCopies: 3},
	{ISBN: "9788324045320", Title: "Harry Potter i Kamień Filozoficzny", Author: "J.K. Rowling", TotalCopies: 5},
	{ISBN: "9788376868117", Title: "Kod da Vinci", Author: "Dan Brown", TotalCopies: 2},
	{ISBN: "9788375066513", Title: "Władca Pierścieni: Drużyna Pierścienia", Author: "J.R.R. Tolkien", TotalCopies: 3},
	{ISBN: "9788324058962", Title: "Mistrz i Małgorzata", Author: "Michaił Bułhakow", TotalCopies: 2},
	{ISBN: "9788381005670", Title: "Thinking, Fast and Slow", Author: "Daniel Kahneman", TotalCopies: 2},
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	store, err := backend.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	service := lending.NewService(store.Store, lending.WithPolicy(cfg.Policy))

	logger.Info("adding sample books", "backend", cfg.Backend, "count", len(sampleBooks))

	added := 0
	for _, book := range sampleBooks {
		result, err := service.AddBook(ctx, book)
		if err != nil {
			// Re-running the seed hits DuplicateISBN for books already present
			logger.Warn("book not added", "title", book.Title, "code", lending.CodeOf(err), "error", err)
			continue
		}
		logger.Info("book added", "id", result.Book.ID, "title", result.Book.Title)
		added++
	}

	logger.Info("seeding finished", "added", added, "total", len(sampleBooks))
}
