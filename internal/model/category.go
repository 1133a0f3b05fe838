package model

import (
	"encoding/json"
	"fmt"
)

// Category identifies the pickup source of a product.
type Category string

// Categories are stored and serialised by their display label.
const (
	CategoryHiLife           Category = "萊爾富便利商店"
	CategoryFamilyMart       Category = "全家便利商店"
	CategoryChineseBreakfast Category = "中式早餐店"
	CategoryWesternBreakfast Category = "西式早餐店"
	CategoryCustom           Category = "自訂來源"
)

// storeCategories lists the pickup sources shown as stores, in display order.
var storeCategories = []Category{
	CategoryHiLife,
	CategoryFamilyMart,
	CategoryChineseBreakfast,
	CategoryWesternBreakfast,
}

var categoryKeys = map[string]Category{
	"HI_LIFE":           CategoryHiLife,
	"FAMILY_MART":       CategoryFamilyMart,
	"CHINESE_BREAKFAST": CategoryChineseBreakfast,
	"WESTERN_BREAKFAST": CategoryWesternBreakfast,
	"CUSTOM":            CategoryCustom,
}

// StoreCategories returns the categories that have their own store page.
func StoreCategories() []Category {
	out := make([]Category, len(storeCategories))
	copy(out, storeCategories)
	return out
}

// AllCategories returns every category, including CategoryCustom.
func AllCategories() []Category {
	return append(StoreCategories(), CategoryCustom)
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryHiLife, CategoryFamilyMart, CategoryChineseBreakfast, CategoryWesternBreakfast, CategoryCustom:
		return true
	}
	return false
}

// IsStore reports whether c has a store page.
func (c Category) IsStore() bool {
	return c.Valid() && c != CategoryCustom
}

// ParseCategory accepts either the display label or the enum key (e.g. "FAMILY_MART").
func ParseCategory(s string) (Category, error) {
	if c := Category(s); c.Valid() {
		return c, nil
	}
	if c, ok := categoryKeys[s]; ok {
		return c, nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// UnmarshalJSON rejects labels outside the enumeration.
func (c *Category) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseCategory(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
