// Package merge implements merge subcommand: combines several archives or
// directories into one archive, merging resources claimed by transformers.
package merge

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/ianaindex"

	"fragmerge/archive"
	"fragmerge/state"
	"fragmerge/transform"
)

const resultMode fs.FileMode = 0o644

func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("merge")

	dst := cmd.Args().Get(0)
	if len(dst) == 0 {
		return errors.New("no destination has been specified")
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return err
	}

	sources := cmd.Args().Tail()
	if len(sources) == 0 {
		return errors.New("no input sources have been specified")
	}
	for i := range sources {
		if sources[i], err = filepath.Abs(sources[i]); err != nil {
			return err
		}
	}

	env.Overwrite, env.FragmentName = cmd.Bool("overwrite"), cmd.String("name")

	// Since zip "standard" does not define file name encoding we may need to
	// force archaic code page for old archives
	if cp := cmd.String("force-zip-cp"); len(cp) > 0 {
		env.CodePage, err = ianaindex.IANA.Encoding(cp)
		if err != nil || env.CodePage == nil {
			log.Warn("Unknown character set specification. Ignoring...", zap.String("charset", cp), zap.Error(err))
			env.CodePage = nil
		} else {
			n, _ := ianaindex.IANA.Name(env.CodePage)
			log.Debug("Forcefully converting all non UTF-8 file names in archives", zap.String("charset", n))
		}
	}

	log.Info("Processing starting", zap.Strings("sources", sources), zap.String("destination", dst))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return process(ctx, dst, sources, log)
}

// checkSource makes sure source is either directory or zip archive.
func checkSource(src string) error {
	fi, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("input source was not found (%s): %w", src, err)
	}
	if fi.IsDir() {
		return nil
	}
	if !fi.Mode().IsRegular() {
		return fmt.Errorf("unexpected path mode for (%s)", src)
	}
	ok, err := archive.IsArchive(src)
	if err != nil {
		return fmt.Errorf("unable to check archive type: %w", err)
	}
	if !ok {
		return fmt.Errorf("input source is neither directory nor archive (%s)", src)
	}
	return nil
}

// process handles the core merge logic independently of CLI framework.
func process(ctx context.Context, dst string, sources []string, log *zap.Logger) (err error) {
	env := state.EnvFromContext(ctx)

	if _, err := os.Stat(dst); err == nil && !env.Overwrite {
		return fmt.Errorf("destination already exists (%s), use --overwrite to replace it", dst)
	}
	for _, src := range sources {
		if err := checkSource(src); err != nil {
			return err
		}
		if src == dst {
			return fmt.Errorf("destination cannot be one of the sources (%s)", dst)
		}
	}

	conf := env.Cfg.Merge
	if len(env.FragmentName) > 0 {
		conf.WebFragment.Name = env.FragmentName
	}
	transformers, err := transform.FromConfig(&conf, env.Rpt, log)
	if err != nil {
		return fmt.Errorf("unable to prepare transformers: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*")
	if err != nil {
		return fmt.Errorf("unable to create temporary file: %w", err)
	}
	defer func() {
		// already closed and moved away on success
		tmp.Close()
		if rerr := os.Remove(tmp.Name()); rerr != nil && !errors.Is(rerr, fs.ErrNotExist) {
			err = multierr.Append(err, rerr)
		}
	}()

	w := archive.NewWriter(tmp)
	for _, src := range sources {
		log.Debug("Processing source", zap.String("source", src))
		if err := archive.Walk(ctx, src, env.CodePage, func(source string, e *archive.Entry) error {
			return route(w, transformers, e, log)
		}); err != nil {
			return fmt.Errorf("unable to process source (%s): %w", src, err)
		}
	}

	// do not emit anything when interrupted
	if err := ctx.Err(); err != nil {
		return err
	}

	for _, t := range transformers {
		if !t.HasTransformedResource() {
			continue
		}
		log.Debug("Emitting merged resources", zap.String("transformer", t.Name()))
		if err := t.ModifyOutput(w); err != nil {
			return fmt.Errorf("%s: %w", t.Name(), err)
		}
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("unable to finish archive: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("unable to finish archive: %w", err)
	}
	return finalize(tmp.Name(), dst, env.Cfg.Merge.FixZip)
}

// route hands entry to the first transformer claiming it, otherwise copies
// it to destination unless entry with the same name was written already.
func route(w *archive.Writer, transformers []transform.Transformer, e *archive.Entry, log *zap.Logger) error {
	if t := transform.Select(transformers, e.Name); t != nil {
		r, err := e.Open()
		if err != nil {
			return fmt.Errorf("unable to read %s: %w", e.Name, err)
		}
		defer r.Close()
		log.Debug("Transforming entry", zap.String("entry", e.Name), zap.String("transformer", t.Name()))
		return t.Transform(e.Name, r)
	}
	if w.Has(e.Name) {
		log.Debug("Duplicate entry skipped", zap.String("entry", e.Name))
		return nil
	}
	return w.Copy(e)
}

// finalize moves result in place, existing destination is replaced only
// when complete archive is ready.
func finalize(tmp, dst string, fixZip bool) error {
	result := tmp
	if fixZip {
		result = tmp + ".fixed"
		if err := archive.FixDataDescriptors(tmp, result); err != nil {
			return err
		}
	}
	// temporary files are private, result should not be
	err := os.Chmod(result, resultMode)
	if err == nil {
		err = os.Rename(result, dst)
	}
	if err != nil {
		if result != tmp {
			os.Remove(result)
		}
		return fmt.Errorf("unable to move result to destination (%s): %w", dst, err)
	}
	return nil
}
