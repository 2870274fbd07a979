package dist

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"
)

// NewsFile is the release-notes file that must mention the version being released.
const NewsFile = "NEWS.rst"

const newsDateLayout = "2006-01-02"

// FindNewsEntry returns the date of the first line of the NEWS file that starts with
// "<version> - ", taken from the line's last field.
func FindNewsEntry(filename, version string) (time.Time, error) {
	file, err := os.Open(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return time.Time{}, &PreconditionError{Msg: fmt.Sprintf("%s entry for %q missing (no %s)",
				NewsFile, version, filename)}
		}
		return time.Time{}, err
	}
	defer file.Close()

	prefix := version + " - "
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, prefix) {
			continue
		}
		fields := strings.Fields(line)
		date, err := time.ParseInLocation(newsDateLayout, fields[len(fields)-1], time.Local)
		if err != nil {
			return time.Time{}, &PreconditionError{Msg: fmt.Sprintf("%s entry for %q has an invalid date: %v",
				NewsFile, version, err)}
		}
		return date, nil
	}
	if err := scanner.Err(); err != nil {
		return time.Time{}, err
	}
	return time.Time{}, &PreconditionError{Msg: fmt.Sprintf("%s entry for %q missing", NewsFile, version)}
}

// CheckNews fails if the NEWS file has no entry for the project's version, or (unless force is
// set) if the entry is more than a day old.
func (b *Builder) CheckNews(force bool) error {
	date, err := FindNewsEntry(b.Project.Path(NewsFile), b.Project.Version)
	if err != nil {
		return err
	}
	now := time.Now
	if b.Now != nil {
		now = b.Now
	}
	if now().Sub(date) > 24*time.Hour && !force {
		return &PreconditionError{Msg: fmt.Sprintf("%s entry is older than a day, version may not have been updated",
			NewsFile)}
	}
	return nil
}
