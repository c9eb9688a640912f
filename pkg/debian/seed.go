package debian

import (
	"io"
	"os"

	"github.com/matzehuels/debgems/pkg/deps"
)

// ReadSeed reads a status file written by an earlier run and returns the
// packaging results it holds, keyed by Debian name. Records that were never
// probed are ignored. names fills in missing Debian names.
func ReadSeed(r io.Reader, names *Names) (map[string]deps.Packaging, error) {
	records, err := deps.DecodeRecords(r)
	if err != nil {
		return nil, err
	}
	if names == nil {
		names = DefaultNames()
	}
	seed := make(map[string]deps.Packaging, len(records))
	for _, rec := range records {
		if rec.Suite == "" || rec.Error != "" {
			continue
		}
		debName := rec.DebianName
		if debName == "" {
			debName = names.Name(rec.Name)
		}
		seed[debName] = deps.Packaging{
			DebianName: debName,
			Version:    rec.Version,
			Suite:      rec.Suite,
			Status:     statusFor(rec),
			Link:       rec.Link,
		}
	}
	return seed, nil
}

// ReadSeedFile is [ReadSeed] on a file path.
func ReadSeedFile(path string, names *Names) (map[string]deps.Packaging, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadSeed(f, names)
}

func statusFor(rec *deps.Record) deps.PackageStatus {
	if rec.Status != "" {
		return rec.Status
	}
	switch rec.Suite {
	case deps.SuiteUnpackaged:
		return deps.Unpackaged
	case deps.SuiteITP:
		return deps.ITP
	case deps.SuiteRFP:
		return deps.RFP
	case deps.SuiteNew:
		return deps.InNew
	}
	return deps.Packaged
}
