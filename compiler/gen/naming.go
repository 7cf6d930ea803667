package gen

import (
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/google/uuid"
	"github.com/syssam/modelbuilder/metadata"
	"go.uber.org/zap"
)

const (
	conflictSuffix   = "1"
	defaultContext   = "OrganizationServiceContext1"
	unknownName      = "Unknown"
	unknownLabelName = "UnknownLabel"
)

var validNameRegex = regexp.MustCompile(`(?i)[a-z0-9_]*`)

// Fixed entity names that do not follow their schema name.
var entityNames = map[string]string{
	"activitymimeattachment":     "ActivityMimeAttachment",
	"monthlyfiscalcalendar":      "MonthlyFiscalCalendar",
	"fixedmonthlyfiscalcalendar": "FixedMonthlyFiscalCalendar",
	"quarterlyfiscalcalendar":    "QuarterlyFiscalCalendar",
	"semiannualfiscalcalendar":   "SemiAnnualFiscalCalendar",
	"annualfiscalcalendar":       "AnnualFiscalCalendar",
}

// Fixed attribute names of the fiscal calendar and activity party attributes.
var attributeNames = func() map[string]string {
	m := map[string]string{
		"requiredattendees": "RequiredAttendees",
		"from":              "From",
		"to":                "To",
		"cc":                "Cc",
		"bcc":               "Bcc",
	}
	periods := []string{"Quarter1", "Quarter2", "Quarter3", "Quarter4", "FirstHalf", "SecondHalf", "Annual"}
	for i := 1; i <= 12; i++ {
		periods = append(periods, "Month"+strconv.Itoa(i))
	}
	for _, p := range periods {
		m[strings.ToLower(p)] = p
		m[strings.ToLower(p)+"_base"] = p + "_Base"
	}
	return m
}()

// Naming is the default NamingService.
type Naming struct {
	contextName string
	legacy      bool
	reserved    *Reserved

	mu        sync.Mutex
	known     map[string]string
	typeNames map[string]int
}

// NewNaming returns the default naming service.
func NewNaming(cfg *Config, reserved *Reserved) *Naming {
	if reserved == nil {
		reserved = DefaultReserved()
	}
	ctx := strings.TrimSpace(cfg.ServiceContextName)
	if ctx == "" {
		ctx = defaultContext
	}
	return &Naming{
		contextName: ctx,
		legacy:      cfg.LegacyMode,
		reserved:    reserved,
		known:       make(map[string]string),
		typeNames:   make(map[string]int),
	}
}

func (n *Naming) lookup(key string) (string, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	v, ok := n.known[key]
	return v, ok
}

// remember stores name under key unless another call got there first, and
// returns the stored name.
func (n *Naming) remember(key, name string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if v, ok := n.known[key]; ok {
		return v
	}
	n.known[key] = name
	return name
}

// usedUnder reports whether name was already chosen for a node keyed
// below the entity id.
func (n *Naming) usedUnder(entityKey, name string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for k, v := range n.known {
		if v == name && strings.HasPrefix(k, entityKey) {
			return true
		}
	}
	return false
}

// OptionSetName returns the enum name of an option set.
// A name that equals both names of an entity gets an "Enum" suffix.
func (n *Naming) OptionSetName(e *metadata.Entity, os *metadata.OptionSet, s *Services) string {
	key := os.MetadataID.String()
	if v, ok := n.lookup(key); ok {
		return v
	}
	name := os.Name
	if n.legacy && os.Type == metadata.OptionSetState && e != nil {
		name = e.SchemaName + "State"
	}
	name = n.ValidTypeName(name)
	if s != nil && s.Org != nil {
		for _, other := range s.Org.Entities {
			if equalFold(other.LogicalName, name) && equalFold(other.SchemaName, name) {
				name += "Enum"
				break
			}
		}
	}
	return n.remember(key, name)
}

// OptionName returns the enum value name of an option. State options use
// their invariant name; others use the label in the default language, then
// any label, then a placeholder built from the value.
func (n *Naming) OptionName(os *metadata.OptionSet, o *metadata.Option, s *Services) string {
	key := os.MetadataID.String() + strconv.Itoa(o.Value)
	if v, ok := n.lookup(key); ok {
		return v
	}
	name := o.InvariantName
	if name == "" {
		name = o.Label.Text(labelLanguage(s))
	}
	name = ValidName(name)
	if name == "" {
		name = unknownLabelName + strconv.Itoa(o.Value)
	}
	return n.remember(key, name)
}

func labelLanguage(s *Services) int {
	if s != nil && s.Config != nil && s.Config.DefaultLanguageID != 0 {
		return s.Config.DefaultLanguageID
	}
	if s != nil && s.Org != nil && s.Org.LanguageCode != 0 {
		return s.Org.LanguageCode
	}
	return metadata.DefaultLanguageCode
}

// EntityName returns the class name of an entity.
func (n *Naming) EntityName(e *metadata.Entity, s *Services) string {
	key := e.MetadataID.String()
	hasID := e.MetadataID != uuid.Nil
	if hasID {
		if v, ok := n.lookup(key); ok {
			return v
		}
	}
	name, ok := entityNames[e.LogicalName]
	if !ok {
		name = e.SchemaName
	}
	typeName := n.ValidTypeName(name)
	if n.reserved.HasSDKType(e.LogicalName) {
		if s != nil && s.Log != nil {
			s.Log.Warn("entity name collides with an SDK type, adding suffix",
				zap.String("entity", e.LogicalName))
		}
		typeName += "_Ent"
	}
	if !hasID {
		return typeName
	}
	return n.remember(key, typeName)
}

// AttributeName returns the property name of an attribute.
func (n *Naming) AttributeName(e *metadata.Entity, a *metadata.Attribute, s *Services) string {
	key := e.MetadataID.String() + a.MetadataID.String()
	if v, ok := n.lookup(key); ok {
		return v
	}
	name, ok := attributeNames[a.LogicalName]
	if !ok {
		name = a.SchemaName
	}
	name = ValidName(name)
	if n.reserved.IsMember(name) || name == s.Naming.EntityName(e, s) {
		name += conflictSuffix
	}
	return n.remember(key, name)
}

// RelationshipName returns the property name of a relationship. Reflexive
// relationships get one name per role.
func (n *Naming) RelationshipName(e *metadata.Entity, r metadata.Relationship, role metadata.Role, s *Services) string {
	entityKey := e.MetadataID.String()
	key := entityKey + r.ID().String() + role.String()
	if v, ok := n.lookup(key); ok {
		return v
	}
	name := ValidName(role.String() + r.Name())
	if n.reserved.IsMember(name) || name == s.Naming.EntityName(e, s) || n.usedUnder(entityKey, name) {
		name += conflictSuffix
	}
	return n.remember(key, name)
}

// ServiceContextName returns the service context class name.
func (n *Naming) ServiceContextName(*Services) string {
	return n.contextName
}

// EntitySetName returns the queryable set property name of an entity.
func (n *Naming) EntitySetName(e *metadata.Entity, s *Services) string {
	return s.Naming.EntityName(e, s) + "Set"
}

// PairName returns the base name of the request and response classes.
func (n *Naming) PairName(p *metadata.Pair, _ *Services) string {
	key := p.ID.String()
	if v, ok := n.lookup(key); ok {
		return v
	}
	name := ""
	if p.Request != nil {
		name = p.Request.Name
	}
	return n.remember(key, n.ValidTypeName(name))
}

// RequestFieldName returns the property name of a request field.
func (n *Naming) RequestFieldName(q *metadata.Request, f *metadata.RequestField, _ *Services) string {
	key := q.ID.String() + strconv.Itoa(f.Index)
	if v, ok := n.lookup(key); ok {
		return v
	}
	return n.remember(key, ValidName(f.Name))
}

// ResponseFieldName returns the property name of a response field.
func (n *Naming) ResponseFieldName(r *metadata.Response, f *metadata.ResponseField, _ *Services) string {
	key := r.ID.String() + strconv.Itoa(f.Index)
	if v, ok := n.lookup(key); ok {
		return v
	}
	return n.remember(key, ValidName(f.Name))
}

// ValidTypeName returns a valid name that no earlier call returned. A
// repeated name gets the number of its repetitions appended.
func (n *Naming) ValidTypeName(name string) string {
	valid := ValidName(name)
	n.mu.Lock()
	defer n.mu.Unlock()
	count, ok := n.typeNames[valid]
	if !ok {
		n.typeNames[valid] = 0
		return valid
	}
	count++
	n.typeNames[valid] = count
	return valid + strconv.Itoa(count)
}

// ValidName turns name into an identifier: "$" is spelled out, runs of
// letters, digits and underscores are kept and a leading non-letter gets an
// underscore prefix. An empty name becomes "Unknown".
func ValidName(name string) string {
	if name == "" {
		name = unknownName
	}
	name = strings.NewReplacer("$", "CurrencySymbol_", "(", "_").Replace(name)
	var b strings.Builder
	for _, m := range validNameRegex.FindAllString(name, -1) {
		if m == "" {
			continue
		}
		if b.Len() == 0 && !unicode.IsLetter(rune(m[0])) {
			b.WriteByte('_')
		}
		b.WriteString(m)
	}
	return b.String()
}
