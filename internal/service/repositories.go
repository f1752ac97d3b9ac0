package service

import (
	"context"

	"github.com/vbonduro/labinv/internal/domain"
	"github.com/vbonduro/labinv/internal/store"
)

// recordRepository is the subset of store.RecordStore the services require.
type recordRepository interface {
	Create(ctx context.Context, rec *domain.Record) (*domain.Record, error)
	GetByID(ctx context.Context, id int64) (*domain.Record, error)
	List(ctx context.Context, filter store.RecordFilter) ([]*domain.Record, error)
	Update(ctx context.Context, rec *domain.Record) error
	Delete(ctx context.Context, id int64) error
	ListByGridCell(ctx context.Context, zone string, section domain.Section, row, column int) ([]*domain.Record, error)
	ListByRegion(ctx context.Context, regionID int64) ([]*domain.Record, error)
	ListByCompartment(ctx context.Context, compartmentID int64) ([]*domain.Record, error)
	ListLegacy(ctx context.Context, zone string) ([]*domain.Record, error)
	CountByGridCell(ctx context.Context, zone string, section domain.Section) ([]store.CellCount, error)
	CountByRegion(ctx context.Context, layoutID int64) (map[int64]int, error)
	CountByCompartment(ctx context.Context, schematicID int64) (map[int64]int, error)
	CountLocations(ctx context.Context, zone string) (store.LocationCounts, error)
	MoveLegacyToRegion(ctx context.Context, id, regionID int64) (bool, error)
	InTx(ctx context.Context, fn func(tx *store.RecordStore) error) error
}

// zoneRepository is the subset of store.ZoneStore the services require.
type zoneRepository interface {
	Create(ctx context.Context, z *domain.Zone) (*domain.Zone, error)
	GetByKey(ctx context.Context, key string) (*domain.Zone, error)
	List(ctx context.Context) ([]*domain.Zone, error)
	Update(ctx context.Context, z *domain.Zone) error
}

// layoutRepository is the subset of store.LayoutStore the services require.
type layoutRepository interface {
	Create(ctx context.Context, l *domain.Layout) (*domain.Layout, error)
	GetByID(ctx context.Context, id int64) (*domain.Layout, error)
	GetByZoneSection(ctx context.Context, zone string, section domain.Section) (*domain.Layout, error)
	List(ctx context.Context) ([]*domain.Layout, error)
	ReplacePhoto(ctx context.Context, id int64, photoKey, mimeType string, width, height int) error
	Delete(ctx context.Context, id int64) (int, error)
}

// regionRepository is the subset of store.RegionStore the services require.
type regionRepository interface {
	Create(ctx context.Context, r *domain.Region) (*domain.Region, error)
	GetByID(ctx context.Context, id int64) (*domain.Region, error)
	ListByLayout(ctx context.Context, layoutID int64) ([]*domain.Region, error)
	Update(ctx context.Context, r *domain.Region) error
	Delete(ctx context.Context, id int64) (int, error)
}

// fridgeRepository is the subset of store.FridgeStore the services require.
type fridgeRepository interface {
	Create(ctx context.Context, f *domain.Fridge) (*domain.Fridge, error)
	GetByID(ctx context.Context, id int64) (*domain.Fridge, error)
	List(ctx context.Context) ([]*domain.Fridge, error)
	ListByZone(ctx context.Context, zone string) ([]*domain.Fridge, error)
	Update(ctx context.Context, f *domain.Fridge) error
	Delete(ctx context.Context, id int64) (int, error)
}

// schematicRepository is the subset of store.SchematicStore the services require.
type schematicRepository interface {
	Create(ctx context.Context, sc *domain.Schematic) (*domain.Schematic, error)
	GetByID(ctx context.Context, id int64) (*domain.Schematic, error)
	GetByPlacement(ctx context.Context, zone string, section domain.Section, fridgeID *int64) (*domain.Schematic, error)
	List(ctx context.Context) ([]*domain.Schematic, error)
	ListByFridge(ctx context.Context, fridgeID int64) ([]*domain.Schematic, error)
	CountBySection(ctx context.Context, zone string, section domain.Section) (int, error)
	ReplacePhoto(ctx context.Context, id int64, photoKey, mimeType string) error
	Delete(ctx context.Context, id int64) (int, error)
	GetCompartment(ctx context.Context, id int64) (*domain.Compartment, error)
	ListCompartments(ctx context.Context, schematicID int64) ([]*domain.Compartment, error)
	SaveCompartments(ctx context.Context, schematicID int64, comps []*domain.Compartment) (int, error)
}

// antibodyRepository is the subset of store.AntibodyStore the services require.
type antibodyRepository interface {
	CreatePrimary(ctx context.Context, a *domain.PrimaryAntibody) (*domain.PrimaryAntibody, error)
	GetPrimary(ctx context.Context, id int64) (*domain.PrimaryAntibody, error)
	ListPrimaries(ctx context.Context) ([]*domain.PrimaryAntibody, error)
	UpdatePrimary(ctx context.Context, a *domain.PrimaryAntibody) error
	DeletePrimary(ctx context.Context, id int64) error
	CreateSecondary(ctx context.Context, a *domain.SecondaryAntibody) (*domain.SecondaryAntibody, error)
	GetSecondary(ctx context.Context, id int64) (*domain.SecondaryAntibody, error)
	ListSecondaries(ctx context.Context) ([]*domain.SecondaryAntibody, error)
	ListSecondariesForSpecies(ctx context.Context, species string) ([]*domain.SecondaryAntibody, error)
	UpdateSecondary(ctx context.Context, a *domain.SecondaryAntibody) error
	DeleteSecondary(ctx context.Context, id int64) error
}

// settingRepository is the subset of store.SettingStore the services require.
type settingRepository interface {
	All(ctx context.Context) (map[string]string, error)
	Get(ctx context.Context, key string) (string, bool, error)
	SetMany(ctx context.Context, values map[string]string) error
}
