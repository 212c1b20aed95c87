package gateway

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/AntonStoeckl/circulation-desk/desk/core"
)

// Demo accounts created by SeedDemoData. All share DemoPassword.
const (
	DemoPassword       = "library-demo"
	DemoAdminEmail     = "ada@library.test"
	DemoLibrarianEmail = "lin@library.test"
	DemoMemberEmail    = "mo@library.test"
	DemoReaderEmail    = "noor@library.test"
)

// SeedDemoData fills empty stores with a small library: four users, three authors,
// two categories, four books and one reservation. Ids are fixed so they are easy to type.
func SeedDemoData(ctx context.Context, circulation Circulation, directory Directory) error {
	if err := SeedDirectory(ctx, directory); err != nil {
		return err
	}

	return SeedCatalog(ctx, circulation)
}

// SeedDirectory creates the demo roles, users, authors, categories and reservation.
func SeedDirectory(ctx context.Context, directory Directory) error {
	documents := []struct {
		collection string
		doc        Document
	}{
		{CollectionRoles, Document{"id": "1", "name": RoleAdmin, "description": "Manages everything"}},
		{CollectionRoles, Document{"id": "2", "name": RoleLibrarian, "description": "Runs the circulation desk"}},
		{CollectionRoles, Document{"id": "3", "name": RoleMember, "description": "Borrows books"}},

		{CollectionUsers, Document{"id": "1", "name": "Ada Admin", "email": DemoAdminEmail, "role": RoleAdmin, "password": DemoPassword}},
		{CollectionUsers, Document{"id": "2", "name": "Lin Librarian", "email": DemoLibrarianEmail, "role": RoleLibrarian, "password": DemoPassword}},
		{CollectionUsers, Document{"id": "3", "name": "Mo Member", "email": DemoMemberEmail, "role": RoleMember, "password": DemoPassword}},
		{CollectionUsers, Document{"id": "4", "name": "Noor Reader", "email": DemoReaderEmail, "role": RoleMember, "password": DemoPassword}},

		{CollectionAuthors, Document{"id": "1", "name": "Ursula K. Le Guin"}},
		{CollectionAuthors, Document{"id": "2", "name": "Octavia E. Butler"}},
		{CollectionAuthors, Document{"id": "3", "name": "Italo Calvino"}},

		{CollectionCategories, Document{"id": "1", "name": "Science Fiction"}},
		{CollectionCategories, Document{"id": "2", "name": "Literary Fiction"}},

		{CollectionReservations, Document{"id": "1", "userId": "4", "bookId": "3", "reservedOn": "2024-01-15", "status": "waiting"}},
	}

	for _, item := range documents {
		if _, err := directory.Create(ctx, item.collection, item.doc); err != nil {
			return fmt.Errorf("seed %s %s: %w", item.collection, item.doc.ID(), err)
		}
	}

	return nil
}

// SeedCatalog saves the demo books. Existing books with the same ids are replaced.
func SeedCatalog(ctx context.Context, circulation Circulation) error {
	books := []core.BookSummary{
		demoBook("1", "The Left Hand of Darkness", "9780441478125", "1", "1", 2, 2, "12.50"),
		demoBook("2", "Kindred", "9780807083697", "2", "1", 1, 1, "15.00"),
		demoBook("3", "Invisible Cities", "9780156453806", "3", "2", 0, 1, "9.90"),
		demoBook("4", "The Dispossessed", "9780061054884", "1", "1", 3, 3, "11.00"),
	}

	for _, book := range books {
		if _, err := circulation.SaveBook(ctx, book); err != nil {
			return fmt.Errorf("seed book %s: %w", book.ID, err)
		}
	}

	return nil
}

func demoBook(id, title, isbn, authorID, categoryID string, available, total int, points string) core.BookSummary {
	return core.BookSummary{
		ID:              core.ID(id),
		Title:           title,
		ISBN:            isbn,
		AuthorID:        core.ID(authorID),
		CategoryID:      core.ID(categoryID),
		AvailableCopies: available,
		TotalCopies:     total,
		PointValue:      decimal.RequireFromString(points),
	}
}
