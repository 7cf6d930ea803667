package xrm

// EntityRole is the role of a record in a reflexive relationship.
type EntityRole uint8

// Relationship roles. RoleNone is used for relationships between distinct
// entities.
const (
	RoleNone EntityRole = iota
	Referencing
	Referenced
)

func (r EntityRole) String() string {
	switch r {
	case Referencing:
		return "Referencing"
	case Referenced:
		return "Referenced"
	default:
		return ""
	}
}

// RelationshipKey keys the related records of an entity.
type RelationshipKey struct {
	SchemaName string
	Role       EntityRole
}

func related(e *Entity, schemaName string, role EntityRole) []*Entity {
	if e == nil {
		return nil
	}
	return e.RelatedEntities[RelationshipKey{SchemaName: schemaName, Role: role}]
}

func setRelated(e *Entity, schemaName string, role EntityRole, records []*Entity) {
	key := RelationshipKey{SchemaName: schemaName, Role: role}
	if records == nil {
		delete(e.RelatedEntities, key)
		return
	}
	if e.RelatedEntities == nil {
		e.RelatedEntities = make(map[RelationshipKey][]*Entity)
	}
	e.RelatedEntities[key] = records
}

// GetRelatedEntity returns the single record related through a N:1
// relationship, or nil.
func GetRelatedEntity[T any, PT RecordPtr[T]](e *Entity, schemaName string, role EntityRole) PT {
	rs := related(e, schemaName, role)
	if len(rs) == 0 {
		return nil
	}
	return ToRecord[T, PT](rs[0])
}

// SetRelatedEntity sets the single record related through a N:1
// relationship. A nil record clears it.
func SetRelatedEntity[PT Record](e *Entity, schemaName string, role EntityRole, r PT) {
	base := baseOf(r)
	if base == nil {
		setRelated(e, schemaName, role, nil)
		return
	}
	setRelated(e, schemaName, role, []*Entity{base})
}

// GetRelatedEntities returns the records related through a 1:N or N:N
// relationship.
func GetRelatedEntities[T any, PT RecordPtr[T]](e *Entity, schemaName string, role EntityRole) []PT {
	rs := related(e, schemaName, role)
	if rs == nil {
		return nil
	}
	out := make([]PT, 0, len(rs))
	for _, base := range rs {
		out = append(out, ToRecord[T, PT](base))
	}
	return out
}

// SetRelatedEntities sets the records related through a 1:N or N:N
// relationship. A nil slice clears them.
func SetRelatedEntities[PT Record](e *Entity, schemaName string, role EntityRole, rs []PT) {
	if rs == nil {
		setRelated(e, schemaName, role, nil)
		return
	}
	bases := make([]*Entity, 0, len(rs))
	for _, r := range rs {
		if base := baseOf(r); base != nil {
			bases = append(bases, base)
		}
	}
	setRelated(e, schemaName, role, bases)
}
