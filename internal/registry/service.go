// Package registry manages persistent product state: projects, their
// component hierarchies, the material catalog, and recorded evaluations.
package registry

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/ecoscope/ecoscope/pkg/bom"
)

// Service provides project and catalog management backed by Postgres.
type Service struct {
	db *sql.DB
}

// Project groups one product's components and evaluations.
type Project struct {
	ID          int64
	Name        string
	Description *string
	CreatedAt   time.Time
}

// EvaluationRow is the persisted summary of one assessment run. The full
// report lives in blob storage under ReportRef.
type EvaluationRow struct {
	ID           string
	ProjectID    int64
	RootID       int64
	Weight       float64
	Score        float64
	RecycleValue float64
	RecycleGrade string
	Gate         *string
	ImpactGWP    float64
	ImpactGrade  string
	ReportRef    string
	CreatedAt    time.Time
}

// NewService creates a new registry Service.
func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// CreateProject creates a new project.
func (s *Service) CreateProject(ctx context.Context, name string, description *string) (*Project, error) {
	p := &Project{}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO projects (name, description)
		 VALUES ($1, $2)
		 RETURNING id, name, description, created_at`,
		name, description,
	).Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return p, nil
}

// GetProject retrieves a project by id.
func (s *Service) GetProject(ctx context.Context, projectID int64) (*Project, error) {
	p := &Project{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, created_at
		 FROM projects WHERE id = $1`,
		projectID,
	).Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get project %d: %w", projectID, err)
	}
	return p, nil
}

// GetProjectByName looks up a project by its unique name.
func (s *Service) GetProjectByName(ctx context.Context, name string) (*Project, error) {
	p := &Project{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, created_at
		 FROM projects WHERE name = $1`,
		name,
	).Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get project by name %s: %w", name, err)
	}
	return p, nil
}

// EnsureProject gets or creates a project by name.
func (s *Service) EnsureProject(ctx context.Context, name string) (*Project, error) {
	p, err := s.GetProjectByName(ctx, name)
	if err == nil {
		return p, nil
	}
	p, err = s.CreateProject(ctx, name, nil)
	if err != nil {
		// Could be a race condition; try getting again
		if strings.Contains(err.Error(), "duplicate") || strings.Contains(err.Error(), "unique") {
			return s.GetProjectByName(ctx, name)
		}
		return nil, fmt.Errorf("ensure project: %w", err)
	}
	return p, nil
}

// ListProjects returns all projects ordered by name.
func (s *Service) ListProjects(ctx context.Context) ([]Project, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description, created_at
		 FROM projects ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// UpsertMaterial creates or updates a material catalog entry by name.
func (s *Service) UpsertMaterial(ctx context.Context, m *bom.Material) (*bom.Material, error) {
	out := &bom.Material{}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO materials (name, family, density, total_gwp, fossil_gwp, biogenic_gwp, adpf,
		                        is_dangerous, system_ability, sortability)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (name) DO UPDATE
		   SET family = EXCLUDED.family,
		       density = EXCLUDED.density,
		       total_gwp = EXCLUDED.total_gwp,
		       fossil_gwp = EXCLUDED.fossil_gwp,
		       biogenic_gwp = EXCLUDED.biogenic_gwp,
		       adpf = EXCLUDED.adpf,
		       is_dangerous = EXCLUDED.is_dangerous,
		       system_ability = EXCLUDED.system_ability,
		       sortability = EXCLUDED.sortability
		 RETURNING id, name, family, density, total_gwp, fossil_gwp, biogenic_gwp, adpf,
		           is_dangerous, system_ability, sortability`,
		m.Name, m.Family, m.Density, m.TotalGWP, m.FossilGWP, m.BiogenicGWP, m.ADPF,
		m.IsDangerous, m.SystemAbility, m.Sortability,
	).Scan(&out.ID, &out.Name, &out.Family, &out.Density, &out.TotalGWP, &out.FossilGWP,
		&out.BiogenicGWP, &out.ADPF, &out.IsDangerous, &out.SystemAbility, &out.Sortability)
	if err != nil {
		return nil, fmt.Errorf("upsert material %s: %w", m.Name, err)
	}
	return out, nil
}

// GetMaterial retrieves a material by id.
func (s *Service) GetMaterial(ctx context.Context, materialID int64) (*bom.Material, error) {
	m := &bom.Material{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, family, density, total_gwp, fossil_gwp, biogenic_gwp, adpf,
		        is_dangerous, system_ability, sortability
		 FROM materials WHERE id = $1`,
		materialID,
	).Scan(&m.ID, &m.Name, &m.Family, &m.Density, &m.TotalGWP, &m.FossilGWP,
		&m.BiogenicGWP, &m.ADPF, &m.IsDangerous, &m.SystemAbility, &m.Sortability)
	if err != nil {
		return nil, fmt.Errorf("get material %d: %w", materialID, err)
	}
	return m, nil
}

// ListMaterials returns the full material catalog ordered by name.
func (s *Service) ListMaterials(ctx context.Context) ([]bom.Material, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, family, density, total_gwp, fossil_gwp, biogenic_gwp, adpf,
		        is_dangerous, system_ability, sortability
		 FROM materials ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	defer rows.Close()

	var materials []bom.Material
	for rows.Next() {
		var m bom.Material
		if err := rows.Scan(&m.ID, &m.Name, &m.Family, &m.Density, &m.TotalGWP, &m.FossilGWP,
			&m.BiogenicGWP, &m.ADPF, &m.IsDangerous, &m.SystemAbility, &m.Sortability); err != nil {
			return nil, fmt.Errorf("scan material: %w", err)
		}
		materials = append(materials, m)
	}
	return materials, rows.Err()
}

// CreateComponent inserts a component into a project's hierarchy.
func (s *Service) CreateComponent(ctx context.Context, c *bom.Component) (*bom.Component, error) {
	out := &bom.Component{}
	var conn string
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO components (project_id, name, parent_id, is_atomic, material_id, volume, weight,
		                         reusable, connection, system_ability, r_factor,
		                         separation_eff, sorting_eff, compat_bonus, compat_malus)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		 RETURNING id, project_id, name, parent_id, is_atomic, material_id, volume, weight,
		           reusable, connection, system_ability, r_factor,
		           separation_eff, sorting_eff, compat_bonus, compat_malus`,
		c.ProjectID, c.Name, c.ParentID, c.IsAtomic, c.MaterialID, c.Volume, c.Weight,
		c.Reusable, c.Connection.String(), c.SystemAbility, c.RFactor,
		c.SeparationEff, c.SortingEff, c.CompatBonus, c.CompatMalus,
	).Scan(&out.ID, &out.ProjectID, &out.Name, &out.ParentID, &out.IsAtomic, &out.MaterialID,
		&out.Volume, &out.Weight, &out.Reusable, &conn, &out.SystemAbility, &out.RFactor,
		&out.SeparationEff, &out.SortingEff, &out.CompatBonus, &out.CompatMalus)
	if err != nil {
		return nil, fmt.Errorf("create component %s: %w", c.Name, err)
	}
	out.Connection = bom.ParseConnectionType(conn)
	return out, nil
}

// UpdateComponent updates a component's editable attributes. Changing the
// volume or material invalidates the derived weight, so it is reset to NULL
// and recomputed on the next weight resolution.
func (s *Service) UpdateComponent(ctx context.Context, c *bom.Component) (*bom.Component, error) {
	out := &bom.Component{}
	var conn string
	err := s.db.QueryRowContext(ctx,
		`UPDATE components
		 SET name = $2, parent_id = $3, material_id = $4, volume = $5,
		     weight = CASE WHEN material_id IS DISTINCT FROM $4 OR volume IS DISTINCT FROM $5
		                   THEN NULL ELSE weight END,
		     reusable = $6, connection = $7, system_ability = $8, r_factor = $9,
		     separation_eff = $10, sorting_eff = $11, compat_bonus = $12, compat_malus = $13
		 WHERE id = $1
		 RETURNING id, project_id, name, parent_id, is_atomic, material_id, volume, weight,
		           reusable, connection, system_ability, r_factor,
		           separation_eff, sorting_eff, compat_bonus, compat_malus`,
		c.ID, c.Name, c.ParentID, c.MaterialID, c.Volume,
		c.Reusable, c.Connection.String(), c.SystemAbility, c.RFactor,
		c.SeparationEff, c.SortingEff, c.CompatBonus, c.CompatMalus,
	).Scan(&out.ID, &out.ProjectID, &out.Name, &out.ParentID, &out.IsAtomic, &out.MaterialID,
		&out.Volume, &out.Weight, &out.Reusable, &conn, &out.SystemAbility, &out.RFactor,
		&out.SeparationEff, &out.SortingEff, &out.CompatBonus, &out.CompatMalus)
	if err != nil {
		return nil, fmt.Errorf("update component %d: %w", c.ID, err)
	}
	out.Connection = bom.ParseConnectionType(conn)
	return out, nil
}

// UpdateComponentWeight persists a resolved weight for a component. The
// weight resolver calls this after each sweep so stored trees stay warm.
func (s *Service) UpdateComponentWeight(ctx context.Context, componentID int64, weight float64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE components SET weight = $2 WHERE id = $1`,
		componentID, weight,
	)
	if err != nil {
		return fmt.Errorf("update component %d weight: %w", componentID, err)
	}
	return nil
}

// ClearDerivedWeights drops volume-derived weights for all atomic components
// of a material, across projects. Components with a volume had their weight
// computed from the material density, which just changed.
func (s *Service) ClearDerivedWeights(ctx context.Context, materialID int64) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE components SET weight = NULL
		 WHERE material_id = $1 AND volume IS NOT NULL`,
		materialID,
	)
	if err != nil {
		return 0, fmt.Errorf("clear derived weights for material %d: %w", materialID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return n, nil
}

// DeleteComponent removes a component. Children are re-parented by the
// ON DELETE SET NULL constraint and become roots.
func (s *Service) DeleteComponent(ctx context.Context, componentID int64) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM components WHERE id = $1`,
		componentID,
	)
	if err != nil {
		return fmt.Errorf("delete component %d: %w", componentID, err)
	}
	return nil
}

// ListComponents returns all components of a project ordered by id.
func (s *Service) ListComponents(ctx context.Context, projectID int64) ([]*bom.Component, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, project_id, name, parent_id, is_atomic, material_id, volume, weight,
		        reusable, connection, system_ability, r_factor,
		        separation_eff, sorting_eff, compat_bonus, compat_malus
		 FROM components WHERE project_id = $1 ORDER BY id`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("list components: %w", err)
	}
	defer rows.Close()

	var components []*bom.Component
	for rows.Next() {
		c := &bom.Component{}
		var conn string
		if err := rows.Scan(&c.ID, &c.ProjectID, &c.Name, &c.ParentID, &c.IsAtomic, &c.MaterialID,
			&c.Volume, &c.Weight, &c.Reusable, &conn, &c.SystemAbility, &c.RFactor,
			&c.SeparationEff, &c.SortingEff, &c.CompatBonus, &c.CompatMalus); err != nil {
			return nil, fmt.Errorf("scan component: %w", err)
		}
		c.Connection = bom.ParseConnectionType(conn)
		components = append(components, c)
	}
	return components, rows.Err()
}

// GetComponent retrieves a single component by id.
func (s *Service) GetComponent(ctx context.Context, componentID int64) (*bom.Component, error) {
	c := &bom.Component{}
	var conn string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, project_id, name, parent_id, is_atomic, material_id, volume, weight,
		        reusable, connection, system_ability, r_factor,
		        separation_eff, sorting_eff, compat_bonus, compat_malus
		 FROM components WHERE id = $1`,
		componentID,
	).Scan(&c.ID, &c.ProjectID, &c.Name, &c.ParentID, &c.IsAtomic, &c.MaterialID,
		&c.Volume, &c.Weight, &c.Reusable, &conn, &c.SystemAbility, &c.RFactor,
		&c.SeparationEff, &c.SortingEff, &c.CompatBonus, &c.CompatMalus)
	if err != nil {
		return nil, fmt.Errorf("get component %d: %w", componentID, err)
	}
	c.Connection = bom.ParseConnectionType(conn)
	return c, nil
}

// UpsertCompat records an explicit pairwise compatibility override. The pair
// is stored in canonical order so (a,b) and (b,a) hit the same row.
func (s *Service) UpsertCompat(ctx context.Context, m1, m2 int64, bonus, malus float64) error {
	key := bom.MakePairKey(m1, m2)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO material_compat (material_a, material_b, bonus, malus)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (material_a, material_b) DO UPDATE
		   SET bonus = EXCLUDED.bonus, malus = EXCLUDED.malus`,
		key.A, key.B, bonus, malus,
	)
	if err != nil {
		return fmt.Errorf("upsert compat %d:%d: %w", key.A, key.B, err)
	}
	return nil
}

// LoadCompatTable returns all pairwise compatibility overrides.
func (s *Service) LoadCompatTable(ctx context.Context) (bom.CompatTable, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT material_a, material_b, bonus, malus FROM material_compat`,
	)
	if err != nil {
		return nil, fmt.Errorf("load compat table: %w", err)
	}
	defer rows.Close()

	table := bom.CompatTable{}
	for rows.Next() {
		var a, b int64
		var e bom.CompatEntry
		if err := rows.Scan(&a, &b, &e.Bonus, &e.Malus); err != nil {
			return nil, fmt.Errorf("scan compat entry: %w", err)
		}
		table[bom.MakePairKey(a, b)] = e
	}
	return table, rows.Err()
}

// LoadTree assembles the full in-memory tree for a project: its components,
// every referenced material, and the compatibility table.
func (s *Service) LoadTree(ctx context.Context, projectID int64) (*bom.Tree, error) {
	components, err := s.ListComponents(ctx, projectID)
	if err != nil {
		return nil, err
	}

	seen := map[int64]bool{}
	var materials []*bom.Material
	for _, c := range components {
		if c.MaterialID == nil || seen[*c.MaterialID] {
			continue
		}
		m, err := s.GetMaterial(ctx, *c.MaterialID)
		if err != nil {
			return nil, err
		}
		seen[m.ID] = true
		materials = append(materials, m)
	}

	compat, err := s.LoadCompatTable(ctx)
	if err != nil {
		return nil, err
	}

	tree, err := bom.BuildTree(projectID, components, materials, compat)
	if err != nil {
		return nil, fmt.Errorf("build tree for project %d: %w", projectID, err)
	}
	return tree, nil
}

// InsertEvaluation records an evaluation summary row.
func (s *Service) InsertEvaluation(ctx context.Context, e *EvaluationRow) error {
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO evaluations (id, project_id, root_id, weight, score,
		                          recycle_value, recycle_grade, gate,
		                          impact_gwp, impact_grade, report_ref)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING created_at`,
		e.ID, e.ProjectID, e.RootID, e.Weight, e.Score,
		e.RecycleValue, e.RecycleGrade, e.Gate,
		e.ImpactGWP, e.ImpactGrade, e.ReportRef,
	).Scan(&e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert evaluation %s: %w", e.ID, err)
	}
	return nil
}

// ListEvaluations returns all evaluations for a project, newest first.
func (s *Service) ListEvaluations(ctx context.Context, projectID int64) ([]EvaluationRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, project_id, root_id, weight, score,
		        recycle_value, recycle_grade, gate,
		        impact_gwp, impact_grade, report_ref, created_at
		 FROM evaluations WHERE project_id = $1 ORDER BY created_at DESC`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("list evaluations: %w", err)
	}
	defer rows.Close()

	var evals []EvaluationRow
	for rows.Next() {
		var e EvaluationRow
		if err := rows.Scan(&e.ID, &e.ProjectID, &e.RootID, &e.Weight, &e.Score,
			&e.RecycleValue, &e.RecycleGrade, &e.Gate,
			&e.ImpactGWP, &e.ImpactGrade, &e.ReportRef, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan evaluation: %w", err)
		}
		evals = append(evals, e)
	}
	return evals, rows.Err()
}

// GetEvaluation returns a single evaluation by id.
func (s *Service) GetEvaluation(ctx context.Context, evaluationID string) (*EvaluationRow, error) {
	e := &EvaluationRow{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, project_id, root_id, weight, score,
		        recycle_value, recycle_grade, gate,
		        impact_gwp, impact_grade, report_ref, created_at
		 FROM evaluations WHERE id = $1`,
		evaluationID,
	).Scan(&e.ID, &e.ProjectID, &e.RootID, &e.Weight, &e.Score,
		&e.RecycleValue, &e.RecycleGrade, &e.Gate,
		&e.ImpactGWP, &e.ImpactGrade, &e.ReportRef, &e.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get evaluation %s: %w", evaluationID, err)
	}
	return e, nil
}
