package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/baldhumanity/neatdrive/neat"
)

// CurrentSchemaVersion is written into every encoded payload.
const CurrentSchemaVersion = 1

// ErrVersionMismatch is returned when a payload carries another schema version.
var ErrVersionMismatch = errors.New("record version mismatch")

type genomeEnvelope struct {
	SchemaVersion int              `json:"schema_version"`
	Genome        neat.GenomeRecord `json:"genome"`
}

type generationEnvelope struct {
	SchemaVersion int                  `json:"schema_version"`
	Stats         neat.GenerationStats `json:"stats"`
}

// EncodeGenome wraps g in a versioned JSON envelope.
func EncodeGenome(g neat.GenomeRecord) ([]byte, error) {
	return json.Marshal(genomeEnvelope{SchemaVersion: CurrentSchemaVersion, Genome: g})
}

// DecodeGenome unwraps a genome envelope written by EncodeGenome.
func DecodeGenome(data []byte) (neat.GenomeRecord, error) {
	var env genomeEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return neat.GenomeRecord{}, err
	}
	if err := checkVersion(env.SchemaVersion); err != nil {
		return neat.GenomeRecord{}, err
	}
	return env.Genome, nil
}

// EncodeGeneration wraps s in a versioned JSON envelope.
func EncodeGeneration(s neat.GenerationStats) ([]byte, error) {
	return json.Marshal(generationEnvelope{SchemaVersion: CurrentSchemaVersion, Stats: s})
}

// DecodeGeneration unwraps a generation envelope written by EncodeGeneration.
func DecodeGeneration(data []byte) (neat.GenerationStats, error) {
	var env generationEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return neat.GenerationStats{}, err
	}
	if err := checkVersion(env.SchemaVersion); err != nil {
		return neat.GenerationStats{}, err
	}
	return env.Stats, nil
}

func checkVersion(v int) error {
	if v != CurrentSchemaVersion {
		return fmt.Errorf("%w: schema=%d want %d", ErrVersionMismatch, v, CurrentSchemaVersion)
	}
	return nil
}
