package pep440

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"k8s.io/apimachinery/pkg/util/intstr"
)

// reVersion is the permissive regular expression from PEP 440 Appendix B, which accepts inputs that
// require subsequent normalization.
//
//nolint:lll // long regexp
var reVersion = regexp.MustCompile(`(?i)^\s*` + regexp.MustCompile(`(?:\s+|#.*)`).ReplaceAllString(`
		v?
		(?:
		    (?:(?P<epoch>[0-9]+)!)?                           # epoch
		    (?P<release>[0-9]+(?:\.[0-9]+)*)                  # release segment
		    (?P<pre>                                          # pre-release
		        [-_\.]?
		        (?P<pre_l>(a|b|c|rc|alpha|beta|pre|preview))
		        [-_\.]?
		        (?P<pre_n>[0-9]+)?
		    )?
		    (?P<post>                                         # post release
		        (?:-(?P<post_n1>[0-9]+))
		        |
		        (?:
		            [-_\.]?
		            (?P<post_l>post|rev|r)
		            [-_\.]?
		            (?P<post_n2>[0-9]+)?
		        )
		    )?
		    (?P<dev>                                          # dev release
		        [-_\.]?
		        (?P<dev_l>dev)
		        [-_\.]?
		        (?P<dev_n>[0-9]+)?
		    )?
		)
		(?:\+(?P<local>[a-z0-9]+(?:[-_\.][a-z0-9]+)*))?       # local version
	`, ``) + `\s*$`)

// spellings maps each canonical pre/post/dev letter to its alternate spellings.
var (
	preSpellings = map[string][]string{
		"a":  {"alpha"},
		"b":  {"beta"},
		"rc": {"c", "pre", "preview"},
	}
	postSpellings = map[string][]string{
		"post": {"", "rev", "r"},
	}
	devSpellings = map[string][]string{
		"dev": nil,
	}
)

type letterNumber struct {
	L string
	N int
}

func parseLetterNumber(letter, number string, spellings map[string][]string) (*letterNumber, error) {
	if letter == "" && number == "" {
		//nolint:nilnil // absent segment
		return nil, nil
	}
	letter = strings.ToLower(letter)
	if number == "" {
		number = "0"
	}
	var ret letterNumber
	if _, ok := spellings[letter]; ok {
		ret.L = letter
	} else {
		for canonical, others := range spellings {
			for _, other := range others {
				if letter == other {
					ret.L = canonical
				}
			}
		}
		if ret.L == "" {
			return nil, fmt.Errorf("invalid string-part: %q", letter)
		}
	}
	n, err := strconv.Atoi(number)
	if err != nil {
		return nil, err
	}
	ret.N = n
	return &ret, nil
}

func parseVersion(str string) (*Version, error) {
	match := reVersion.FindStringSubmatch(str)
	if match == nil {
		return nil, fmt.Errorf("invalid version: %q", str)
	}
	group := func(name string) string {
		return match[reVersion.SubexpIndex(name)]
	}

	var ver Version
	var err error

	if epoch := group("epoch"); epoch != "" {
		ver.Epoch, err = strconv.Atoi(epoch)
		if err != nil {
			return nil, err
		}
	}

	for _, segStr := range strings.Split(group("release"), ".") {
		segInt, err := strconv.Atoi(segStr)
		if err != nil {
			return nil, err
		}
		ver.Release = append(ver.Release, segInt)
	}

	pre, err := parseLetterNumber(group("pre_l"), group("pre_n"), preSpellings)
	if err != nil {
		return nil, fmt.Errorf("pre-release: %w", err)
	}
	if pre != nil {
		ver.Pre = &PreRelease{L: pre.L, N: pre.N}
	}

	post, err := parseLetterNumber(group("post_l"), group("post_n1")+group("post_n2"), postSpellings)
	if err != nil {
		return nil, fmt.Errorf("post-release: %w", err)
	}
	if post != nil {
		ver.Post = &post.N
	}

	dev, err := parseLetterNumber(group("dev_l"), group("dev_n"), devSpellings)
	if err != nil {
		return nil, fmt.Errorf("dev: %w", err)
	}
	if dev != nil {
		ver.Dev = &dev.N
	}

	localParts := strings.FieldsFunc(group("local"), func(r rune) bool {
		return strings.ContainsRune("-_.", r)
	})
	for _, part := range localParts {
		ver.Local = append(ver.Local, intstr.Parse(strings.ToLower(part)))
	}

	return &ver, nil
}
