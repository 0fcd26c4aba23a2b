// Package loader reads the dataset formats named in configuration:
// UMAD vector/string text, FASTA, and FVECS binary.
package loader

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/patrikhermansson/metricspace/core"
)

// UMADVectors reads the UMAD vector text format: first line "<dim>
// <count>", then count lines of dim space-separated floats. num, when
// positive, caps the number of rows read; dim, when positive, caps
// the number of columns read per row.
func UMADVectors(path string, num, dim int) ([]core.Object, error) {
	log.Info().Str("path", path).Msg("loader: reading UMAD vector file")

	file, err := os.Open(path)
	if err != nil {
		return nil, core.Wrap(core.IOError, "open UMAD vector file", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	if !scanner.Scan() {
		return nil, core.NewError(core.IOError, "UMAD vector file is empty")
	}
	header := strings.Fields(scanner.Text())
	if len(header) != 2 {
		return nil, core.NewError(core.IOError, "UMAD vector file header must be \"<dim> <count>\"")
	}
	fileDim, err := strconv.Atoi(header[0])
	if err != nil {
		return nil, core.Wrap(core.IOError, "parse UMAD vector dimension", err)
	}
	count, err := strconv.Atoi(header[1])
	if err != nil {
		return nil, core.Wrap(core.IOError, "parse UMAD vector count", err)
	}

	if num > 0 && num < count {
		count = num
	}
	rowDim := fileDim
	if dim > 0 && dim < fileDim {
		rowDim = dim
	}

	objs := make([]core.Object, 0, count)
	for i := 0; i < count && scanner.Scan(); i++ {
		fields := strings.Fields(scanner.Text())
		if len(fields) < fileDim {
			return nil, core.NewError(core.IOError,
				fmt.Sprintf("UMAD vector row %d has %d fields, want %d", i, len(fields), fileDim))
		}
		vec := make([]float64, rowDim)
		for j := 0; j < rowDim; j++ {
			v, err := strconv.ParseFloat(fields[j], 64)
			if err != nil {
				return nil, core.Wrap(core.IOError, fmt.Sprintf("parse UMAD vector row %d col %d", i, j), err)
			}
			vec[j] = v
		}
		objs = append(objs, core.NewVectorObject(i, vec))
	}
	if err := scanner.Err(); err != nil {
		return nil, core.Wrap(core.IOError, "scan UMAD vector file", err)
	}

	log.Info().Int("count", len(objs)).Int("dim", rowDim).Msg("loader: loaded UMAD vectors")
	return objs, nil
}

// UMADStrings reads the UMAD string text format: one string per line,
// blank lines skipped.
func UMADStrings(path string, num int) ([]core.Object, error) {
	log.Info().Str("path", path).Msg("loader: reading UMAD string file")

	file, err := os.Open(path)
	if err != nil {
		return nil, core.Wrap(core.IOError, "open UMAD string file", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	var objs []core.Object
	id := 0
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		objs = append(objs, core.NewStringObject(id, line))
		id++
		if num > 0 && len(objs) >= num {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, core.Wrap(core.IOError, "scan UMAD string file", err)
	}

	log.Info().Int("count", len(objs)).Msg("loader: loaded UMAD strings")
	return objs, nil
}

// FASTA reads a FASTA file: concatenates sequence lines following each
// ">header" line into one string object per record.
func FASTA(path string, num int) ([]core.Object, error) {
	log.Info().Str("path", path).Msg("loader: reading FASTA file")

	file, err := os.Open(path)
	if err != nil {
		return nil, core.Wrap(core.IOError, "open FASTA file", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	var objs []core.Object
	var builder strings.Builder
	id := 0

	flush := func() {
		if builder.Len() > 0 {
			objs = append(objs, core.NewStringObject(id, builder.String()))
			id++
			builder.Reset()
		}
	}

	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, ">") {
			flush()
			if num > 0 && len(objs) >= num {
				return objs, nil
			}
			continue
		}
		builder.WriteString(strings.TrimSpace(line))
	}
	flush()
	if err := scanner.Err(); err != nil {
		return nil, core.Wrap(core.IOError, "scan FASTA file", err)
	}

	if num > 0 && len(objs) > num {
		objs = objs[:num]
	}

	log.Info().Int("count", len(objs)).Msg("loader: loaded FASTA records")
	return objs, nil
}

// FVECS reads the FVECS binary format: repeated records of [int32
// dim][dim x float32], little-endian, as used by ANN benchmark
// corpora (SIFT/GIST).
func FVECS(path string, num int) ([]core.Object, error) {
	log.Info().Str("path", path).Msg("loader: reading FVECS file")

	file, err := os.Open(path)
	if err != nil {
		return nil, core.Wrap(core.IOError, "open FVECS file", err)
	}
	defer file.Close()

	reader := bufio.NewReader(file)
	var objs []core.Object
	id := 0
	for {
		if num > 0 && len(objs) >= num {
			break
		}
		var dim int32
		if err := binary.Read(reader, binary.LittleEndian, &dim); err != nil {
			if err == io.EOF {
				break
			}
			return nil, core.Wrap(core.IOError, "read FVECS record dimension", err)
		}
		raw := make([]float32, dim)
		if err := binary.Read(reader, binary.LittleEndian, &raw); err != nil {
			return nil, core.Wrap(core.IOError, "read FVECS record body", err)
		}
		vec := make([]float64, dim)
		for i, v := range raw {
			vec[i] = float64(v)
		}
		objs = append(objs, core.NewVectorObject(id, vec))
		id++
	}

	log.Info().Int("count", len(objs)).Msg("loader: loaded FVECS vectors")
	return objs, nil
}
