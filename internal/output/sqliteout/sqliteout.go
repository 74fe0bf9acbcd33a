// Package sqliteout persists a processed MFT into a SQLite database via gorm.io/gorm and
// github.com/glebarez/sqlite (pure Go, no cgo), per spec §6: an `mft_records` table keyed by
// record_number, companion `mft_attributes`/`alternate_data_streams`/`security_descriptors` tables, and
// views for active/deleted/directories plus a union-all timeline. Grounded on
// marmos91/dittofs's pkg/controlplane/store GORMStore: gorm.Open + AutoMigrate, silenced GORM logger.
package sqliteout

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dfir-toolkit/ntfsmft/internal/mft"
	"github.com/dfir-toolkit/ntfsmft/internal/output"
	"github.com/dfir-toolkit/ntfsmft/internal/record"
)

// MftRecord is the `mft_records` table: one row per logical record, the same shape as output.Row.
type MftRecord struct {
	RecordNumber   uint64 `gorm:"primaryKey;column:record_number"`
	SequenceNumber uint16 `gorm:"column:sequence_number"`

	Active    bool `gorm:"column:active"`
	Directory bool `gorm:"column:directory"`
	Deleted   bool `gorm:"column:deleted"`
	HasADS    bool `gorm:"column:has_ads"`

	ParentNumber   uint64 `gorm:"column:parent_number"`
	ParentSequence uint16 `gorm:"column:parent_sequence"`

	FullPath string `gorm:"column:full_path"`
	FileName string `gorm:"column:filename"`

	StdCreation     string `gorm:"column:std_creation"`
	StdModification string `gorm:"column:std_modification"`
	StdMftChange    string `gorm:"column:std_mft_change"`
	StdAccess       string `gorm:"column:std_access"`

	FnCreation     string `gorm:"column:fn_creation"`
	FnModification string `gorm:"column:fn_modification"`
	FnMftChange    string `gorm:"column:fn_mft_change"`
	FnAccess       string `gorm:"column:fn_access"`

	AllocatedSize uint64 `gorm:"column:allocated_size"`
	RealSize      uint64 `gorm:"column:real_size"`

	ObjectId      string `gorm:"column:object_id"`
	BirthVolumeId string `gorm:"column:birth_volume_id"`
	BirthObjectId string `gorm:"column:birth_object_id"`
	BirthDomainId string `gorm:"column:birth_domain_id"`

	MD5    string `gorm:"column:md5"`
	SHA256 string `gorm:"column:sha256"`
	SHA512 string `gorm:"column:sha512"`
	CRC32  string `gorm:"column:crc32"`

	Notes string `gorm:"column:notes"`
}

func (MftRecord) TableName() string { return "mft_records" }

// MftAttribute is the `mft_attributes` companion table: one row per decoded attribute instance.
type MftAttribute struct {
	ID            uint   `gorm:"primaryKey;autoIncrement;column:id"`
	RecordNumber  uint64 `gorm:"column:record_number;index"`
	AttributeType uint32 `gorm:"column:attribute_type"`
	Name          string `gorm:"column:name"`
	Resident      bool   `gorm:"column:resident"`
}

func (MftAttribute) TableName() string { return "mft_attributes" }

// AlternateDataStream is the `alternate_data_streams` companion table: one row per named $DATA
// attribute (the unnamed stream is carried on MftRecord.RealSize instead).
type AlternateDataStream struct {
	ID           uint   `gorm:"primaryKey;autoIncrement;column:id"`
	RecordNumber uint64 `gorm:"column:record_number;index"`
	Name         string `gorm:"column:name"`
	Resident     bool   `gorm:"column:resident"`
	ActualSize   uint64 `gorm:"column:actual_size"`
}

func (AlternateDataStream) TableName() string { return "alternate_data_streams" }

// SecurityDescriptorRow is the `security_descriptors` companion table: the best-effort owner/group/ACL
// summary decoded from a record's $SECURITY_DESCRIPTOR attribute.
type SecurityDescriptorRow struct {
	ID           uint   `gorm:"primaryKey;autoIncrement;column:id"`
	RecordNumber uint64 `gorm:"column:record_number;index"`
	OwnerSID     string `gorm:"column:owner_sid"`
	GroupSID     string `gorm:"column:group_sid"`
	DACL         string `gorm:"column:dacl"`
	SACL         string `gorm:"column:sacl"`
	Malformed    bool   `gorm:"column:malformed"`
}

func (SecurityDescriptorRow) TableName() string { return "security_descriptors" }

// AllModels lists every table AutoMigrate must create, in the style of dittofs's models.AllModels.
func AllModels() []interface{} {
	return []interface{}{
		&MftRecord{}, &MftAttribute{}, &AlternateDataStream{}, &SecurityDescriptorRow{},
	}
}

// Open connects to the SQLite file at path, running AutoMigrate and creating the spec's §6 views.
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("sqliteout: open %s: %w", path, err)
	}
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return nil, fmt.Errorf("sqliteout: migrate: %w", err)
	}
	if err := createViews(db); err != nil {
		return nil, err
	}
	return db, nil
}

func createViews(db *gorm.DB) error {
	views := map[string]string{
		"active_records":     "SELECT * FROM mft_records WHERE active = 1",
		"deleted_records":    "SELECT * FROM mft_records WHERE deleted = 1",
		"directory_records":  "SELECT * FROM mft_records WHERE directory = 1",
		"timeline": `
			SELECT record_number, filename, full_path, std_creation AS timestamp, 'std_creation' AS event_type FROM mft_records WHERE std_creation != ''
			UNION ALL
			SELECT record_number, filename, full_path, std_modification, 'std_modification' FROM mft_records WHERE std_modification != ''
			UNION ALL
			SELECT record_number, filename, full_path, std_mft_change, 'std_mft_change' FROM mft_records WHERE std_mft_change != ''
			UNION ALL
			SELECT record_number, filename, full_path, std_access, 'std_access' FROM mft_records WHERE std_access != ''
			UNION ALL
			SELECT record_number, filename, full_path, fn_creation, 'fn_creation' FROM mft_records WHERE fn_creation != ''
			UNION ALL
			SELECT record_number, filename, full_path, fn_modification, 'fn_modification' FROM mft_records WHERE fn_modification != ''
			UNION ALL
			SELECT record_number, filename, full_path, fn_mft_change, 'fn_mft_change' FROM mft_records WHERE fn_mft_change != ''
			UNION ALL
			SELECT record_number, filename, full_path, fn_access, 'fn_access' FROM mft_records WHERE fn_access != ''
		`,
	}
	for name, query := range views {
		if err := db.Exec(fmt.Sprintf("DROP VIEW IF EXISTS %s", name)).Error; err != nil {
			return fmt.Errorf("sqliteout: drop view %s: %w", name, err)
		}
		if err := db.Exec(fmt.Sprintf("CREATE VIEW %s AS %s", name, query)).Error; err != nil {
			return fmt.Errorf("sqliteout: create view %s: %w", name, err)
		}
	}
	return nil
}

func toMftRecord(r output.Row) MftRecord {
	return MftRecord{
		RecordNumber: r.RecordNumber, SequenceNumber: r.SequenceNumber,
		Active: r.Active, Directory: r.Directory, Deleted: r.Deleted, HasADS: r.HasADS,
		ParentNumber: r.ParentNumber, ParentSequence: r.ParentSequence,
		FullPath: r.FullPath, FileName: r.FileName,
		StdCreation: r.STDCreation, StdModification: r.STDModification,
		StdMftChange: r.STDMftChange, StdAccess: r.STDAccess,
		FnCreation: r.FNCreation, FnModification: r.FNModification,
		FnMftChange: r.FNMftChange, FnAccess: r.FNAccess,
		AllocatedSize: r.AllocatedSize, RealSize: r.RealSize,
		ObjectId: r.ObjectId, BirthVolumeId: r.BirthVolumeId,
		BirthObjectId: r.BirthObjectId, BirthDomainId: r.BirthDomainId,
		MD5: r.MD5, SHA256: r.SHA256, SHA512: r.SHA512, CRC32: r.CRC32,
		Notes: r.Notes,
	}
}

// WriteRecord inserts the row projection and the companion attribute/ADS/security-descriptor rows
// derived directly from rec, since those three companion tables carry detail output.Row doesn't.
func WriteRecord(db *gorm.DB, rec *record.Record, row output.Row) error {
	if err := db.Create(toMftRecordPtr(row)).Error; err != nil {
		return fmt.Errorf("sqliteout: insert record %d: %w", rec.Number, err)
	}

	for attrType, instances := range rec.Attributes {
		for _, a := range instances {
			attrRow := MftAttribute{
				RecordNumber:  rec.Number,
				AttributeType: uint32(attrType),
				Name:          a.Name,
				Resident:      a.Resident,
			}
			if err := db.Create(&attrRow).Error; err != nil {
				return fmt.Errorf("sqliteout: insert attribute for record %d: %w", rec.Number, err)
			}
			if attrType == mft.AttributeTypeData && a.Name != "" {
				ads := AlternateDataStream{
					RecordNumber: rec.Number,
					Name:         a.Name,
					Resident:     a.Resident,
					ActualSize:   a.ActualSize,
				}
				if err := db.Create(&ads).Error; err != nil {
					return fmt.Errorf("sqliteout: insert ADS for record %d: %w", rec.Number, err)
				}
			}
		}
	}

	if rec.SecurityDescriptor != nil {
		sd := SecurityDescriptorRow{
			RecordNumber: rec.Number,
			OwnerSID:     rec.SecurityDescriptor.OwnerSID,
			GroupSID:     rec.SecurityDescriptor.GroupSID,
			DACL:         rec.SecurityDescriptor.DACL,
			SACL:         rec.SecurityDescriptor.SACL,
			Malformed:    rec.SecurityDescriptor.Malformed,
		}
		if err := db.Create(&sd).Error; err != nil {
			return fmt.Errorf("sqliteout: insert security descriptor for record %d: %w", rec.Number, err)
		}
	}

	return nil
}

func toMftRecordPtr(row output.Row) *MftRecord {
	m := toMftRecord(row)
	return &m
}
