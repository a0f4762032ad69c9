package seed

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"restaurant-hub/internal/inventory"
	"restaurant-hub/internal/logger"
	"restaurant-hub/internal/menu"
	"restaurant-hub/internal/staff"
)

// MalformedRecordError describes a seed line that was skipped.
type MalformedRecordError struct {
	File   string
	Line   int
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Reason)
}

// Employee is one line of the staff file.
type Employee struct {
	Name string
	Role staff.Role
}

// Loader reads the seed files. Bad lines are logged, collected in Skipped
// and left out; only a file that cannot be read fails the load.
type Loader struct {
	logger  *logger.Logger
	Skipped []*MalformedRecordError
}

func NewLoader(log *logger.Logger) *Loader {
	if log == nil {
		log = logger.NewNop()
	}
	return &Loader{logger: log}
}

// Ingredients reads lines of "name, quantity, threshold, requestAmount".
func (l *Loader) Ingredients(path string) ([]inventory.Ingredient, error) {
	var out []inventory.Ingredient
	err := l.each(path, func(text string) error {
		fields := splitTrim(text, ",")
		if len(fields) != 4 {
			return fmt.Errorf("want 4 fields, got %d", len(fields))
		}
		if fields[0] == "" {
			return fmt.Errorf("empty ingredient name")
		}
		nums, err := atoiAll(fields[1:])
		if err != nil {
			return err
		}
		out = append(out, inventory.Ingredient{
			Name:          fields[0],
			Quantity:      nums[0],
			Threshold:     nums[1],
			RequestAmount: nums[2],
		})
		return nil
	})
	return out, err
}

// Menu reads lines of "Name price|ingredient,qty|ingredient,qty". A recipe
// naming an ingredient for which known returns false makes the line
// malformed. A nil known accepts every ingredient.
func (l *Loader) Menu(path string, known func(string) bool) ([]menu.Item, error) {
	var out []menu.Item
	err := l.each(path, func(text string) error {
		parts := splitTrim(text, "|")
		head := strings.Fields(parts[0])
		if len(head) < 2 {
			return fmt.Errorf("want \"name price\", got %q", parts[0])
		}
		price, err := strconv.Atoi(head[len(head)-1])
		if err != nil || price < 0 {
			return fmt.Errorf("invalid price %q", head[len(head)-1])
		}

		item := menu.Item{
			Name:   strings.Join(head[:len(head)-1], " "),
			Price:  price,
			Recipe: make(map[string]int, len(parts)-1),
		}
		for _, part := range parts[1:] {
			line := splitTrim(part, ",")
			if len(line) != 2 || line[0] == "" {
				return fmt.Errorf("invalid recipe line %q", part)
			}
			qty, err := strconv.Atoi(line[1])
			if err != nil || qty <= 0 {
				return fmt.Errorf("invalid quantity in recipe line %q", part)
			}
			if known != nil && !known(line[0]) {
				return fmt.Errorf("unknown ingredient %q", line[0])
			}
			item.AddIngredient(line[0], qty)
		}
		out = append(out, item)
		return nil
	})
	return out, err
}

// Staff reads lines of "name, Role".
func (l *Loader) Staff(path string) ([]Employee, error) {
	var out []Employee
	seen := make(map[string]bool)
	err := l.each(path, func(text string) error {
		fields := splitTrim(text, ",")
		if len(fields) != 2 || fields[0] == "" {
			return fmt.Errorf("want \"name, role\", got %q", text)
		}
		role, err := staff.ParseRole(fields[1])
		if err != nil {
			return err
		}
		if seen[fields[0]] {
			return fmt.Errorf("duplicate employee %s", fields[0])
		}
		seen[fields[0]] = true
		out = append(out, Employee{Name: fields[0], Role: role})
		return nil
	})
	return out, err
}

func (l *Loader) each(path string, parse func(text string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()
	return l.scan(f, path, parse)
}

func (l *Loader) scan(r io.Reader, file string, parse func(text string) error) error {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		if err := parse(text); err != nil {
			rec := &MalformedRecordError{File: file, Line: lineNo, Reason: err.Error()}
			l.Skipped = append(l.Skipped, rec)
			l.logger.Warn("seed_record_skipped", "Skipping malformed seed record", "startup", map[string]interface{}{
				"file":   file,
				"line":   lineNo,
				"reason": rec.Reason,
			})
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", file, err)
	}
	return nil
}

func splitTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func atoiAll(fields []string) ([]int, error) {
	out := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", f)
		}
		if n < 0 {
			return nil, fmt.Errorf("negative number %d", n)
		}
		out[i] = n
	}
	return out, nil
}
