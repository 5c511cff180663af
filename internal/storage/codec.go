package storage

import (
	"encoding/json"
	"errors"

	"cerebunit/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

func EncodeScore(record model.ScoreRecord) ([]byte, error) {
	return json.Marshal(record)
}

func DecodeScore(data []byte) (model.ScoreRecord, error) {
	var record model.ScoreRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return model.ScoreRecord{}, err
	}
	if err := checkVersion(record.VersionedRecord); err != nil {
		return model.ScoreRecord{}, err
	}
	return record, nil
}

// Stamp sets the current schema and codec versions on record.
func Stamp(record model.ScoreRecord) model.ScoreRecord {
	record.VersionedRecord = model.VersionedRecord{
		SchemaVersion: CurrentSchemaVersion,
		CodecVersion:  CurrentCodecVersion,
	}
	return record
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
