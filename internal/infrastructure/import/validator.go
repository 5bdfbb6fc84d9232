package csvimport

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// FieldType names the parse applied to a cell before rule checks run.
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeInt     FieldType = "int"
	TypeDecimal FieldType = "decimal"
	TypeBool    FieldType = "bool"
	TypeUUID    FieldType = "uuid"
)

// FieldRule is the full set of checks applied to one CSV column.
// Zero values mean "not checked": a MaxLength of 0 imposes no cap,
// a nil Pattern skips the regex, and so on.
type FieldRule struct {
	Column      string
	Type        FieldType
	Required    bool
	MinLength   int
	MaxLength   int
	MinValue    *decimal.Decimal
	MaxValue    *decimal.Decimal
	Pattern     *regexp.Regexp
	PatternDesc string
	Unique      bool
	Reference   string
	CustomFunc  func(value string) error
}

// FieldRuleBuilder assembles a FieldRule fluently. Obtain one via Field.
type FieldRuleBuilder struct {
	rule FieldRule
}

// Field starts a rule for the named column. The type defaults to string.
func Field(column string) *FieldRuleBuilder {
	return &FieldRuleBuilder{rule: FieldRule{Column: column, Type: TypeString}}
}

func (b *FieldRuleBuilder) Required() *FieldRuleBuilder {
	b.rule.Required = true
	return b
}

func (b *FieldRuleBuilder) String() *FieldRuleBuilder {
	b.rule.Type = TypeString
	return b
}

func (b *FieldRuleBuilder) Int() *FieldRuleBuilder {
	b.rule.Type = TypeInt
	return b
}

func (b *FieldRuleBuilder) Decimal() *FieldRuleBuilder {
	b.rule.Type = TypeDecimal
	return b
}

func (b *FieldRuleBuilder) Bool() *FieldRuleBuilder {
	b.rule.Type = TypeBool
	return b
}

func (b *FieldRuleBuilder) UUID() *FieldRuleBuilder {
	b.rule.Type = TypeUUID
	return b
}

func (b *FieldRuleBuilder) MinLength(n int) *FieldRuleBuilder {
	b.rule.MinLength = n
	return b
}

func (b *FieldRuleBuilder) MaxLength(n int) *FieldRuleBuilder {
	b.rule.MaxLength = n
	return b
}

func (b *FieldRuleBuilder) MinValue(v decimal.Decimal) *FieldRuleBuilder {
	b.rule.MinValue = &v
	return b
}

func (b *FieldRuleBuilder) MaxValue(v decimal.Decimal) *FieldRuleBuilder {
	b.rule.MaxValue = &v
	return b
}

// Pattern adds a regex check. The description is what error messages
// show the uploader, e.g. "phone number".
func (b *FieldRuleBuilder) Pattern(pattern, description string) *FieldRuleBuilder {
	b.rule.Pattern = regexp.MustCompile(pattern)
	b.rule.PatternDesc = description
	return b
}

// Unique rejects a value that repeats within the file. Combine with
// WithUniqueLookup on the processor to also reject values already stored.
func (b *FieldRuleBuilder) Unique() *FieldRuleBuilder {
	b.rule.Unique = true
	return b
}

// Reference marks the column as a foreign key of the given kind,
// resolved through the processor's reference lookup.
func (b *FieldRuleBuilder) Reference(refType string) *FieldRuleBuilder {
	b.rule.Reference = refType
	return b
}

// Custom attaches a caller-supplied check, run after the built-in ones.
func (b *FieldRuleBuilder) Custom(fn func(value string) error) *FieldRuleBuilder {
	b.rule.CustomFunc = fn
	return b
}

func (b *FieldRuleBuilder) Build() FieldRule {
	return b.rule
}

// FieldValidator applies per-column rules to rows, accumulating errors
// up to the collection's cap. It also tracks in-file uniqueness, so a
// single instance must see every row of one upload.
type FieldValidator struct {
	rules  map[string]FieldRule
	seen   map[string]map[string]int
	errors *ErrorCollection
}

func NewFieldValidator(rules []FieldRule, maxErrors int) *FieldValidator {
	byColumn := make(map[string]FieldRule, len(rules))
	for _, r := range rules {
		byColumn[r.Column] = r
	}
	return &FieldValidator{
		rules:  byColumn,
		seen:   make(map[string]map[string]int),
		errors: NewErrorCollection(maxErrors),
	}
}

// ValidateRow checks every ruled column of the row and reports whether
// the row passed. Failures are recorded in the error collection.
func (v *FieldValidator) ValidateRow(row *Row) bool {
	ok := true
	for column, rule := range v.rules {
		if !v.checkCell(row.LineNumber, column, row.Get(column), rule) {
			ok = false
		}
	}
	return ok
}

func (v *FieldValidator) checkCell(line int, column, value string, rule FieldRule) bool {
	if value == "" {
		if rule.Required {
			v.errors.AddRequiredError(line, column)
			return false
		}
		return true
	}

	if err := parseAs(value, rule.Type); err != nil {
		v.errors.AddTypeError(line, column, string(rule.Type), value)
		return false
	}

	ok := true
	if (rule.MinLength > 0 && len(value) < rule.MinLength) ||
		(rule.MaxLength > 0 && len(value) > rule.MaxLength) {
		v.errors.AddLengthError(line, column, rule.MinLength, rule.MaxLength)
		ok = false
	}

	if rule.Type == TypeInt || rule.Type == TypeDecimal {
		if !v.checkBounds(line, column, value, rule) {
			ok = false
		}
	}

	if rule.Pattern != nil && !rule.Pattern.MatchString(value) {
		v.errors.AddPatternError(line, column, rule.PatternDesc, value)
		ok = false
	}

	if rule.Unique && !v.checkInFileUnique(line, column, value) {
		ok = false
	}

	if rule.CustomFunc != nil {
		if err := rule.CustomFunc(value); err != nil {
			v.errors.AddValidationError(line, column, ErrCodeImportValidation, err.Error())
			ok = false
		}
	}
	return ok
}

func (v *FieldValidator) checkBounds(line int, column, value string, rule FieldRule) bool {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return false
	}
	if (rule.MinValue != nil && d.LessThan(*rule.MinValue)) ||
		(rule.MaxValue != nil && d.GreaterThan(*rule.MaxValue)) {
		var lo, hi float64
		if rule.MinValue != nil {
			lo, _ = rule.MinValue.Float64()
		}
		if rule.MaxValue != nil {
			hi, _ = rule.MaxValue.Float64()
		}
		v.errors.AddRangeError(line, column, lo, hi)
		return false
	}
	return true
}

func (v *FieldValidator) checkInFileUnique(line int, column, value string) bool {
	if v.seen[column] == nil {
		v.seen[column] = make(map[string]int)
	}
	if first, dup := v.seen[column][value]; dup {
		v.errors.Add(NewRowErrorWithValue(line, column, ErrCodeImportDuplicateInFile,
			fmt.Sprintf("duplicate value '%s' (first seen in row %d)", value, first), value))
		return false
	}
	v.seen[column][value] = line
	return true
}

// Errors returns the accumulated validation errors.
func (v *FieldValidator) Errors() *ErrorCollection {
	return v.errors
}

func parseAs(value string, t FieldType) error {
	switch t {
	case TypeInt:
		_, err := strconv.ParseInt(value, 10, 64)
		return err
	case TypeDecimal:
		_, err := decimal.NewFromString(value)
		return err
	case TypeBool:
		switch strings.ToLower(value) {
		case "true", "false", "1", "0", "yes", "no", "y", "n":
			return nil
		}
		return fmt.Errorf("invalid boolean value: %s", value)
	case TypeUUID:
		return checkUUID(value)
	}
	return nil
}

// checkUUID accepts the canonical 8-4-4-4-12 hex form.
func checkUUID(s string) error {
	if len(s) != 36 {
		return fmt.Errorf("invalid UUID length")
	}
	for i, c := range s {
		switch i {
		case 8, 13, 18, 23:
			if c != '-' {
				return fmt.Errorf("invalid UUID format")
			}
		default:
			isHex := (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
			if !isHex {
				return fmt.Errorf("invalid UUID character")
			}
		}
	}
	return nil
}

// ReferenceValidator resolves foreign key columns against the store,
// memoizing lookups so a code repeated across thousands of rows costs
// one query.
type ReferenceValidator struct {
	lookup func(refType, value string) (bool, error)
	known  map[string]map[string]bool
	errors *ErrorCollection
}

func NewReferenceValidator(lookup func(refType, value string) (bool, error), maxErrors int) *ReferenceValidator {
	return &ReferenceValidator{
		lookup: lookup,
		known:  make(map[string]map[string]bool),
		errors: NewErrorCollection(maxErrors),
	}
}

// ValidateReference reports whether the referenced entity exists.
// Empty values pass; Required is the field rule's concern.
func (v *ReferenceValidator) ValidateReference(row int, column, refType, value string) bool {
	if value == "" {
		return true
	}

	exists, cached := false, false
	if m := v.known[refType]; m != nil {
		exists, cached = m[value]
	}
	if !cached {
		var err error
		exists, err = v.lookup(refType, value)
		if err != nil {
			v.errors.AddValidationError(row, column, ErrCodeImportValidation,
				fmt.Sprintf("error checking %s reference: %v", refType, err))
			return false
		}
		if v.known[refType] == nil {
			v.known[refType] = make(map[string]bool)
		}
		v.known[refType][value] = exists
	}

	if !exists {
		v.errors.AddReferenceError(row, column, value, refType)
		return false
	}
	return true
}

// Errors returns the accumulated reference errors.
func (v *ReferenceValidator) Errors() *ErrorCollection {
	return v.errors
}

// UniquenessValidator rejects values that already exist in the store,
// for columns marked Unique. Unlike references, results are not cached:
// the point is to catch rows racing with concurrent writes.
type UniquenessValidator struct {
	lookup func(entityType, field, value string) (bool, error)
	errors *ErrorCollection
}

func NewUniquenessValidator(lookup func(entityType, field, value string) (bool, error), maxErrors int) *UniquenessValidator {
	return &UniquenessValidator{
		lookup: lookup,
		errors: NewErrorCollection(maxErrors),
	}
}

// ValidateUnique reports whether the value is absent from the store.
func (v *UniquenessValidator) ValidateUnique(row int, column, entityType, value string) bool {
	if value == "" {
		return true
	}

	exists, err := v.lookup(entityType, column, value)
	if err != nil {
		v.errors.AddValidationError(row, column, ErrCodeImportValidation,
			fmt.Sprintf("error checking uniqueness: %v", err))
		return false
	}
	if exists {
		v.errors.AddDuplicateError(row, column, value, true)
		return false
	}
	return true
}

// Errors returns the accumulated uniqueness errors.
func (v *UniquenessValidator) Errors() *ErrorCollection {
	return v.errors
}
