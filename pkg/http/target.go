package http

import (
	"net/url"
	"strings"

	"github.com/brendan.keane/lurl/internal/errors"
)

// Scheme is the only URL scheme Fetch accepts.
const Scheme = "lambda"

// latestQualifier selects the unpublished $LATEST version, same as no
// qualifier at all.
const latestQualifier = "latest"

// Credentials are the user-info part of a lambda:// URL.
type Credentials struct {
	Username string
	Password string
}

// Target is a decomposed lambda:// URL.
type Target struct {
	FunctionName string
	// Qualifier is a version or alias; empty means $LATEST.
	Qualifier string
	// Stage is only set for the name.stage.version host convention.
	Stage string
	// Path is the path exactly as written in the URL, still percent-encoded.
	// Never empty.
	Path string
	// RawQuery is the query string without the leading '?'.
	RawQuery    string
	Credentials *Credentials
}

// HasStage reports whether the target uses the name.stage.version convention.
func (t *Target) HasStage() bool {
	return t.Stage != ""
}

// ParseTarget decomposes a lambda:// URL. Two host conventions are accepted:
//
//	lambda://[user[:pass]@]<name>[:<version>]/<path>[?<query>]
//	lambda://[user[:pass]@]<name>.<stage>.<version>/<path>[?<query>]
//
// Function names cannot contain dots, so a dotted host selects the second
// convention, in which both stage and version are required.
func ParseTarget(rawURL string) (*Target, error) {
	scheme, rest, ok := strings.Cut(rawURL, "://")
	if !ok || !strings.EqualFold(scheme, Scheme) {
		return nil, errors.Newf(errors.ErrorTypeConfig, "only %s:// URLs are supported", Scheme).
			WithContext("config_type", "url").
			WithContext("url", rawURL)
	}

	authority, tail := splitAuthority(rest)

	target := &Target{}
	host := authority
	if at := strings.LastIndex(authority, "@"); at >= 0 {
		creds, err := parseUserInfo(authority[:at])
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConfig, "invalid credentials in URL").
				WithContext("config_type", "url")
		}
		target.Credentials = creds
		host = authority[at+1:]
	}

	if err := target.parseHost(host); err != nil {
		return nil, err.WithContext("url", rawURL)
	}

	path, _, _ := strings.Cut(tail, "#")
	path, target.RawQuery, _ = strings.Cut(path, "?")
	target.Path = path
	if target.Path == "" {
		target.Path = "/"
	}

	return target, nil
}

// splitAuthority separates "user@host" from the "/path?query#frag" tail.
func splitAuthority(rest string) (string, string) {
	if i := strings.IndexAny(rest, "/?#"); i >= 0 {
		return rest[:i], rest[i:]
	}
	return rest, ""
}

func parseUserInfo(info string) (*Credentials, error) {
	rawUser, rawPass, _ := strings.Cut(info, ":")
	username, err := url.PathUnescape(rawUser)
	if err != nil {
		return nil, err
	}
	if username == "" {
		return nil, nil
	}
	password, err := url.PathUnescape(rawPass)
	if err != nil {
		return nil, err
	}
	return &Credentials{Username: username, Password: password}, nil
}

func (t *Target) parseHost(host string) *errors.LurlError {
	if host == "" {
		return errors.New(errors.ErrorTypeConfig, "lambda URL missing function name").
			WithContext("config_type", "url")
	}

	if strings.Contains(host, ".") {
		segments := strings.Split(host, ".")
		if len(segments) != 3 || segments[0] == "" {
			return errors.New(errors.ErrorTypeConfig, "host must be <name>.<stage>.<version>").
				WithContext("config_type", "url").
				WithContext("host", host)
		}
		if segments[1] == "" {
			return errors.New(errors.ErrorTypeConfig, "lambda URL missing stage").
				WithContext("config_type", "url").
				WithContext("host", host)
		}
		if segments[2] == "" {
			return errors.New(errors.ErrorTypeConfig, "lambda URL missing version").
				WithContext("config_type", "url").
				WithContext("host", host)
		}
		t.FunctionName = segments[0]
		t.Stage = segments[1]
		t.Qualifier = normalizeQualifier(segments[2])
		return nil
	}

	name, qualifier, _ := strings.Cut(host, ":")
	if name == "" {
		return errors.New(errors.ErrorTypeConfig, "lambda URL missing function name").
			WithContext("config_type", "url").
			WithContext("host", host)
	}
	t.FunctionName = name
	t.Qualifier = normalizeQualifier(qualifier)
	return nil
}

func normalizeQualifier(q string) string {
	if strings.EqualFold(q, latestQualifier) {
		return ""
	}
	return q
}
