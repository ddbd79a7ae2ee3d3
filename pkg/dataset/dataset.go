// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dataset

import (
	"errors"
	"fmt"
	"strings"
)

// Status records how an item was obtained. It is reported in the manifest
// sidecar and never written into the archive members.
type Status string

const (
	StatusOK          Status = "ok"
	StatusEmpty       Status = "empty"
	StatusUnsupported Status = "unsupported"
	StatusTimeout     Status = "timeout"
	StatusFailed      Status = "failed"
	StatusSkipped     Status = "skipped"
)

// Soft reports whether the status marks a non-fatal collection failure.
func (s Status) Soft() bool {
	switch s {
	case StatusUnsupported, StatusTimeout, StatusFailed:
		return true
	default:
		return false
	}
}

var (
	ErrDuplicateItem     = errors.New("duplicate item")
	ErrDuplicateCategory = errors.New("duplicate category")
	ErrDuplicateEntry    = errors.New("duplicate archive entry")
	ErrInvalidName       = errors.New("invalid name")
	ErrUnknownCategory   = errors.New("category not scheduled")
)

// Item is one collected artifact.
type Item struct {
	Name    string
	Content []byte
	Status  Status
	// Command is the query that produced the content, for the manifest.
	Command string
}

// Category is an insertion-ordered set of uniquely named items.
type Category struct {
	Name  string
	items []Item
	index map[string]int
}

// Items returns the items in insertion order.
func (c *Category) Items() []Item {
	return c.items
}

// Len returns the number of items.
func (c *Category) Len() int {
	return len(c.items)
}

// Get returns the named item.
func (c *Category) Get(name string) (Item, bool) {
	i, ok := c.index[name]
	if !ok {
		return Item{}, false
	}
	return c.items[i], true
}

func (c *Category) add(item Item) error {
	if err := ValidateName(item.Name); err != nil {
		return err
	}
	if _, exists := c.index[item.Name]; exists {
		return fmt.Errorf("%w: %s/%s", ErrDuplicateItem, c.Name, item.Name)
	}
	if item.Status == "" {
		item.Status = StatusOK
		if len(item.Content) == 0 {
			item.Status = StatusEmpty
		}
	}
	c.index[item.Name] = len(c.items)
	c.items = append(c.items, item)
	return nil
}

// Dataset is the ordered, in-memory result of one collection run.
// A scheduled category stays present even when it collects no items.
type Dataset struct {
	categories []*Category
	byName     map[string]*Category
	entries    map[string]struct{}
}

// New returns an empty Dataset.
func New() *Dataset {
	return &Dataset{
		byName:  make(map[string]*Category),
		entries: make(map[string]struct{}),
	}
}

// Schedule appends an empty category. Scheduling the same name twice fails.
func (d *Dataset) Schedule(name string) (*Category, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if _, exists := d.byName[name]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateCategory, name)
	}
	c := &Category{Name: name, index: make(map[string]int)}
	d.categories = append(d.categories, c)
	d.byName[name] = c
	return c, nil
}

// Put adds an item to a scheduled category. Besides per-category uniqueness,
// the flat archive entry name must be unique across the whole dataset.
func (d *Dataset) Put(category string, item Item) error {
	c, ok := d.byName[category]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCategory, category)
	}
	entry := EntryName(category, item.Name)
	if _, exists := d.entries[entry]; exists {
		if _, dup := c.index[item.Name]; dup {
			return fmt.Errorf("%w: %s/%s", ErrDuplicateItem, category, item.Name)
		}
		return fmt.Errorf("%w: %s", ErrDuplicateEntry, entry)
	}
	if err := c.add(item); err != nil {
		return err
	}
	d.entries[entry] = struct{}{}
	return nil
}

// Category returns the named category.
func (d *Dataset) Category(name string) (*Category, bool) {
	c, ok := d.byName[name]
	return c, ok
}

// Categories returns the categories in scheduling order.
func (d *Dataset) Categories() []*Category {
	return d.categories
}

// Len returns the total number of items.
func (d *Dataset) Len() int {
	return len(d.entries)
}

// Walk visits every item in category order, then item order. It stops at the
// first error returned by fn.
func (d *Dataset) Walk(fn func(category string, item Item) error) error {
	for _, c := range d.categories {
		for _, item := range c.items {
			if err := fn(c.Name, item); err != nil {
				return err
			}
		}
	}
	return nil
}

// EntryName is the flat archive member name of an item.
func EntryName(category, item string) string {
	return category + "-" + item
}

// ValidateName rejects names that cannot be used as a flat file name.
func ValidateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty", ErrInvalidName)
	case name == "." || name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	case strings.ContainsAny(name, "/\\\x00"):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidName, name)
	}
	return nil
}
