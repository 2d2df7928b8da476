package interaction

import (
	"os"
	"path"
	"testing"
)

// Test case for catalog lookups and absent entries
func TestCatalogLookup(t *testing.T) {
	catalog := NewCatalog([]string{"title", "genres"})
	catalog.Add("m-1", []string{"Heat", "Crime|Thriller"})
	catalog.Add("m-2", []string{"Alien"})

	attrs, ok := catalog.Attributes("m-1")
	if !ok || attrs[0] != "Heat" || attrs[1] != "Crime|Thriller" {
		t.Errorf("unexpected attributes for m-1: %v (ok=%v)", attrs, ok)
	}

	// Short rows are padded to the column count.
	attrs, ok = catalog.Attributes("m-2")
	if !ok || len(attrs) != 2 || attrs[1] != "" {
		t.Errorf("unexpected attributes for m-2: %v (ok=%v)", attrs, ok)
	}

	if _, ok := catalog.Attributes("m-404"); ok {
		t.Errorf("missing item must not resolve")
	}
}

// Test case for loading interactions and a catalog from CSV files
func TestReadCSVFiles(t *testing.T) {
	dir := t.TempDir()

	ratings := path.Join(dir, "ratings.csv")
	ratingsData := "userId,movieId,rating,timestamp\n1,31,2.5,1260759144\n1,1029,3.0,1260759179\n7,31,4.0,851866450\n"
	if err := os.WriteFile(ratings, []byte(ratingsData), 0644); err != nil {
		t.Fatalf("failed to write ratings file: %v", err)
	}

	rows, err := ReadInteractionsCSV(ratings)
	if err != nil {
		t.Fatalf("ReadInteractionsCSV failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("want 3 data rows after header, got %d", len(rows))
	}

	store, err := NewStore(rows, DefaultSplitPolicy())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	numUsers, numItems := store.Dimensions()
	if numUsers != 2 || numItems != 2 {
		t.Errorf("dimensions: want (2, 2), got (%d, %d)", numUsers, numItems)
	}

	movies := path.Join(dir, "movies.csv")
	moviesData := "movieId,title,genres\n31,Dangerous Minds,Drama\n1029,Dumbo,Animation|Children\n"
	if err := os.WriteFile(movies, []byte(moviesData), 0644); err != nil {
		t.Fatalf("failed to write movies file: %v", err)
	}

	catalog, err := ReadCatalogCSV(movies)
	if err != nil {
		t.Fatalf("ReadCatalogCSV failed: %v", err)
	}
	if catalog.Len() != 2 {
		t.Errorf("want 2 catalog rows, got %d", catalog.Len())
	}
	attrs, ok := catalog.Attributes("1029")
	if !ok || attrs[0] != "Dumbo" {
		t.Errorf("unexpected catalog row for 1029: %v (ok=%v)", attrs, ok)
	}
}
