package compliance

import (
	"strings"

	"github.com/isaiahriv1234/Freight-Project/internal/ledger"
	"github.com/isaiahriv1234/Freight-Project/pkg/enums"
)

// ClassificationKind tags how certain a classification is.
type ClassificationKind string

const (
	KindCertain  ClassificationKind = "certain"
	KindInferred ClassificationKind = "inferred"
	KindUnknown  ClassificationKind = "unknown"
)

// Classification is the outcome of classifying one order.
type Classification struct {
	Kind       ClassificationKind         `json:"kind"`
	Category   enums.DiversityCategory    `json:"category"`
	Method     enums.IdentificationMethod `json:"method"`
	Confidence enums.Confidence           `json:"confidence,omitempty"`
	Keyword    string                     `json:"keyword,omitempty"`
}

func certain(cat enums.DiversityCategory) Classification {
	return Classification{Kind: KindCertain, Category: cat, Method: enums.IdentificationExisting}
}

func unknown() Classification {
	return Classification{Kind: KindUnknown, Category: enums.DiversityUnknown, Method: enums.IdentificationNone}
}

// KeywordRule maps supplier name fragments to a category.
type KeywordRule struct {
	Category enums.DiversityCategory
	Keywords []string
}

// DefaultKeywordRules is evaluated top to bottom; the first matching keyword
// wins.
func DefaultKeywordRules() []KeywordRule {
	return []KeywordRule{
		{Category: enums.DiversityDVBE, Keywords: []string{"veteran", "disabled", "dvbe", "service disabled", "veteran owned"}},
		{Category: enums.DiversityWOB, Keywords: []string{"women", "woman", "female", "wob", "wbe", "women owned"}},
		{Category: enums.DiversityMBE, Keywords: []string{"minority", "hispanic", "latino", "african", "asian", "mbe", "minority owned"}},
		{Category: enums.DiversitySDB, Keywords: []string{"small", "disadvantaged", "sdb", "small business", "disadvantaged business"}},
		{Category: enums.DiversityOSB, Keywords: []string{"small business", "osb", "other small business"}},
	}
}

// Classifier assigns diversity categories to orders whose category is not
// already known.
type Classifier struct {
	rules               []KeywordRule
	smallOrderThreshold float64
	infrequentMaxOrders int
}

func NewClassifier(rules []KeywordRule, smallOrderThreshold float64, infrequentMaxOrders int) *Classifier {
	normalized := make([]KeywordRule, 0, len(rules))
	for _, rule := range rules {
		keywords := make([]string, 0, len(rule.Keywords))
		for _, kw := range rule.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" {
				keywords = append(keywords, kw)
			}
		}
		normalized = append(normalized, KeywordRule{Category: rule.Category, Keywords: keywords})
	}
	return &Classifier{
		rules:               normalized,
		smallOrderThreshold: smallOrderThreshold,
		infrequentMaxOrders: infrequentMaxOrders,
	}
}

// Classify decides the category for one order. supplierOrders is the number
// of orders the supplier has in the ledger.
func (c *Classifier) Classify(order ledger.Order, supplierOrders int) Classification {
	if order.DiversityCategory.IsValid() && order.DiversityCategory != enums.DiversityUnknown {
		return certain(order.DiversityCategory)
	}

	if cls, ok := c.matchKeyword(order.SupplierName); ok {
		return cls
	}

	if order.TotalAmount < c.smallOrderThreshold && supplierOrders > 0 && supplierOrders <= c.infrequentMaxOrders {
		return Classification{
			Kind:       KindInferred,
			Category:   enums.DiversityOSB,
			Method:     enums.IdentificationInference,
			Confidence: enums.ConfidenceMedium,
		}
	}

	return unknown()
}

func (c *Classifier) matchKeyword(supplier string) (Classification, bool) {
	name := strings.ToLower(supplier)
	for _, rule := range c.rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(name, kw) {
				return Classification{
					Kind:       KindInferred,
					Category:   rule.Category,
					Method:     enums.IdentificationKeywordMatch,
					Confidence: enums.ConfidenceHigh,
					Keyword:    kw,
				}, true
			}
		}
	}
	return Classification{}, false
}

// Identification records a category change made by the classifier.
type Identification struct {
	OrderID     string                     `json:"order_id"`
	Supplier    string                     `json:"supplier"`
	OldCategory enums.DiversityCategory    `json:"old_category"`
	NewCategory enums.DiversityCategory    `json:"new_category"`
	Method      enums.IdentificationMethod `json:"method"`
	Confidence  enums.Confidence           `json:"confidence"`
}

// ClassifyAll returns a copy of orders with categories attached, alongside
// the per-order classification and the log of changed categories.
func (c *Classifier) ClassifyAll(orders []ledger.Order) ([]ledger.Order, []Classification, []Identification) {
	counts := make(map[string]int)
	for _, o := range orders {
		counts[o.SupplierName]++
	}

	out := make([]ledger.Order, len(orders))
	classes := make([]Classification, len(orders))
	var log []Identification
	for i, o := range orders {
		cls := c.Classify(o, counts[o.SupplierName])
		classes[i] = cls
		old := o.DiversityCategory
		if old == "" {
			old = enums.DiversityUnknown
		}
		o.DiversityCategory = cls.Category
		out[i] = o
		if cls.Kind == KindInferred && cls.Category != old {
			log = append(log, Identification{
				OrderID:     o.ID,
				Supplier:    o.SupplierName,
				OldCategory: old,
				NewCategory: cls.Category,
				Method:      cls.Method,
				Confidence:  cls.Confidence,
			})
		}
	}
	return out, classes, log
}
