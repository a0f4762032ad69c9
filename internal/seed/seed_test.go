package seed

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"restaurant-hub/internal/staff"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestIngredients(t *testing.T) {
	path := writeFile(t, "ingredients.txt", strings.Join([]string{
		"Buns, 40, 10, 50",
		"",
		"# comment",
		"Patties, 30, 8",
		"Cheese, lots, 10, 40",
		"Lettuce, 25, -1, 30",
		"Tomato,25,5,30",
	}, "\n"))

	l := NewLoader(nil)
	got, err := l.Ingredients(path)
	if err != nil {
		t.Fatalf("Ingredients: %v", err)
	}
	if len(got) != 2 || got[0].Name != "Buns" || got[1].Name != "Tomato" {
		t.Fatalf("ingredients = %+v", got)
	}
	if got[0].Quantity != 40 || got[0].Threshold != 10 || got[0].RequestAmount != 50 {
		t.Fatalf("Buns = %+v", got[0])
	}

	if len(l.Skipped) != 3 {
		t.Fatalf("skipped = %v", l.Skipped)
	}
	lines := []int{l.Skipped[0].Line, l.Skipped[1].Line, l.Skipped[2].Line}
	if lines[0] != 4 || lines[1] != 5 || lines[2] != 6 {
		t.Fatalf("skipped lines = %v", lines)
	}
	if l.Skipped[0].File != path {
		t.Fatalf("file = %q", l.Skipped[0].File)
	}
}

func TestMenu(t *testing.T) {
	path := writeFile(t, "menu.txt", strings.Join([]string{
		"Burger 10|Buns,1|Patties,1",
		"Veggie Wrap 9|Lettuce,2",
		"Fries five|Fries,1",
		"Pizza 15|Dough,1|Anchovies,1",
		"Soup 4|Stock",
		"Water 0",
	}, "\n"))

	stocked := map[string]bool{"Buns": true, "Patties": true, "Lettuce": true, "Fries": true, "Dough": true}
	l := NewLoader(nil)
	got, err := l.Menu(path, func(name string) bool { return stocked[name] })
	if err != nil {
		t.Fatalf("Menu: %v", err)
	}

	if len(got) != 3 {
		t.Fatalf("items = %+v", got)
	}
	if got[0].Name != "Burger" || got[0].Price != 10 || got[0].Recipe["Patties"] != 1 {
		t.Fatalf("Burger = %+v", got[0])
	}
	if got[1].Name != "Veggie Wrap" || got[1].Recipe["Lettuce"] != 2 {
		t.Fatalf("Veggie Wrap = %+v", got[1])
	}
	if got[2].Name != "Water" || len(got[2].Recipe) != 0 {
		t.Fatalf("Water = %+v", got[2])
	}
	if len(l.Skipped) != 3 {
		t.Fatalf("skipped = %v", l.Skipped)
	}
}

func TestStaff(t *testing.T) {
	path := writeFile(t, "employees.txt", "Alice, Chef\nCarol, Server\nErin, Manager\nZed, Janitor\nnobody\nCarol, Chef\n")

	l := NewLoader(nil)
	got, err := l.Staff(path)
	if err != nil {
		t.Fatalf("Staff: %v", err)
	}
	want := []Employee{
		{"Alice", staff.RoleFulfillment},
		{"Carol", staff.RoleTaker},
		{"Erin", staff.RoleSupervisor},
	}
	if len(got) != len(want) {
		t.Fatalf("staff = %+v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("staff[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
	if len(l.Skipped) != 3 {
		t.Fatalf("skipped = %v", l.Skipped)
	}
	if dup := l.Skipped[2]; dup.Line != 6 || !strings.Contains(dup.Reason, "duplicate") {
		t.Fatalf("duplicate record = %+v", dup)
	}
}

func TestMissingFile(t *testing.T) {
	l := NewLoader(nil)
	_, err := l.Ingredients(filepath.Join(t.TempDir(), "nope.txt"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("err = %v, want not exist", err)
	}
}

func TestRepositorySeedFiles(t *testing.T) {
	l := NewLoader(nil)
	ingredients, err := l.Ingredients("../../seed/ingredients.txt")
	if err != nil {
		t.Fatalf("Ingredients: %v", err)
	}
	known := make(map[string]bool, len(ingredients))
	for _, ing := range ingredients {
		known[ing.Name] = true
	}
	if _, err := l.Menu("../../seed/menu.txt", func(name string) bool { return known[name] }); err != nil {
		t.Fatalf("Menu: %v", err)
	}
	if _, err := l.Staff("../../seed/employees.txt"); err != nil {
		t.Fatalf("Staff: %v", err)
	}
	if len(l.Skipped) != 0 {
		t.Fatalf("shipped seed files have bad lines: %v", l.Skipped)
	}
}
