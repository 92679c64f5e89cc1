package schema

import (
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
)

// Entity is one of the fixed logical record types that exist both in the
// public schema and in every programme schema.
type Entity string

const (
	EntityCandidate     Entity = "candidats"
	EntityPreinscription Entity = "preinscriptions"
	EntityInscription   Entity = "inscriptions"
	EntityEnterprise    Entity = "entreprises"
	EntityDocument      Entity = "documents"
	EntityEligibility   Entity = "eligibilites"
	EntityJuryDecision  Entity = "decisions_jury"
)

// TableDef describes the canonical shape of an entity table. Column order
// matters: it drives SELECT ordering during migration and CSV export.
type TableDef struct {
	Table   string
	Columns []string
}

// BoundModel is a TableDef pinned to a physical schema. Binding never mutates
// the canonical definition; the qualified name is computed per schema.
type BoundModel struct {
	Entity  Entity
	Schema  string
	Table   string
	Columns []string
}

// Qualified returns the schema-qualified, quoted table name.
func (b *BoundModel) Qualified() string {
	return pgx.Identifier{b.Schema, b.Table}.Sanitize()
}

// registry is the canonical table set. Every programme schema carries exactly
// these tables, mirroring their public counterparts.
var registry = map[Entity]TableDef{
	EntityCandidate: {
		Table:   "candidats",
		Columns: []string{"id", "programme_id", "nom", "prenom", "email", "telephone", "statut", "created_at", "updated_at"},
	},
	EntityPreinscription: {
		Table:   "preinscriptions",
		Columns: []string{"id", "programme_id", "candidat_id", "projet", "source", "statut", "created_at", "updated_at"},
	},
	EntityInscription: {
		Table:   "inscriptions",
		Columns: []string{"id", "programme_id", "candidat_id", "promotion", "statut", "date_entree", "created_at", "updated_at"},
	},
	EntityEnterprise: {
		Table:   "entreprises",
		Columns: []string{"id", "programme_id", "candidat_id", "raison_sociale", "siret", "forme_juridique", "date_creation", "created_at", "updated_at"},
	},
	EntityDocument: {
		Table:   "documents",
		Columns: []string{"id", "programme_id", "candidat_id", "type", "chemin", "taille", "created_at"},
	},
	EntityEligibility: {
		Table:   "eligibilites",
		Columns: []string{"id", "programme_id", "candidat_id", "score", "seuil", "eligible", "commentaire", "created_at"},
	},
	EntityJuryDecision: {
		Table:   "decisions_jury",
		Columns: []string{"id", "programme_id", "candidat_id", "decision", "motivation", "date_jury", "created_at"},
	},
}

// Entities returns the logical entities in a stable order.
func Entities() []Entity {
	return []Entity{
		EntityCandidate,
		EntityPreinscription,
		EntityInscription,
		EntityEnterprise,
		EntityDocument,
		EntityEligibility,
		EntityJuryDecision,
	}
}

// Tables returns the fixed table set expected in any programme schema.
func Tables() []string {
	entities := Entities()
	tables := make([]string, 0, len(entities))
	for _, e := range entities {
		tables = append(tables, registry[e].Table)
	}
	return tables
}

type bindKey struct {
	entity Entity
	schema string
}

// Binder produces schema-bound model descriptors. Descriptors are cached per
// (entity, schema) and never invalidated: schemas are not renamed at runtime.
type Binder struct {
	mu    sync.RWMutex
	cache map[bindKey]*BoundModel
}

func NewBinder() *Binder {
	return &Binder{cache: make(map[bindKey]*BoundModel)}
}

// Bind returns the descriptor for entity in schemaName. schemaName must have
// passed through Resolve already; Bind re-checks it as a safety net.
func (b *Binder) Bind(entity Entity, schemaName string) (*BoundModel, error) {
	def, ok := registry[entity]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEntity, entity)
	}
	if _, err := Resolve(schemaName); err != nil {
		return nil, err
	}

	key := bindKey{entity: entity, schema: schemaName}
	b.mu.RLock()
	if m, hit := b.cache[key]; hit {
		b.mu.RUnlock()
		return m, nil
	}
	b.mu.RUnlock()

	cols := make([]string, len(def.Columns))
	copy(cols, def.Columns)
	bound := &BoundModel{
		Entity:  entity,
		Schema:  schemaName,
		Table:   def.Table,
		Columns: cols,
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if m, hit := b.cache[key]; hit {
		return m, nil
	}
	b.cache[key] = bound
	return bound, nil
}
