package transport

import (
	"bytes"
	"encoding/json"
	"io"
	"io/ioutil"
	"net/http"

	log "github.com/go-pkgz/lgr"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// response is the part of esapi/opensearchapi response common to all clients
type response struct {
	status int
	body   io.ReadCloser
}

func (r *response) close() {
	if r.body == nil {
		return
	}
	if err := r.body.Close(); err != nil {
		log.Printf("[WARN] error to close response body %v", err)
	}
}

func (r *response) isError() bool {
	return r.status > 299
}

// check returns error with response body for non-successful response
func (r *response) check() error {
	if !r.isError() {
		return nil
	}
	var body []byte
	if r.body != nil {
		var err error
		if body, err = ioutil.ReadAll(r.body); err != nil {
			return errors.Wrap(err, "error reading the response body")
		}
	}
	return errors.Errorf("engine respond an error %d: %s", r.status, string(bytes.TrimSpace(body)))
}

func (r *response) decode(v interface{}) error {
	if r.body == nil {
		return nil
	}
	if err := json.NewDecoder(r.body).Decode(v); err != nil && err != io.EOF {
		return errors.Wrap(err, "error parsing the response body")
	}
	return nil
}

func existsResult(r *response, err error) (bool, error) {
	if err != nil {
		return false, err
	}
	defer r.close()
	switch r.status {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	}
	return false, r.check()
}

func rawResult(r *response, err error) (Response, error) {
	if err != nil {
		return nil, err
	}
	defer r.close()
	if err = r.check(); err != nil {
		return nil, err
	}
	res := Response{}
	if err = r.decode(&res); err != nil {
		return nil, err
	}
	return res, nil
}

func noResult(r *response, err error) error {
	_, err = rawResult(r, err)
	return err
}

func searchResult(r *response, err error) (*SearchResponse, error) {
	if err != nil {
		return nil, err
	}
	defer r.close()
	if err = r.check(); err != nil {
		return nil, err
	}
	var res SearchResponse
	if err = r.decode(&res); err != nil {
		return nil, err
	}
	return &res, nil
}

func getResult(r *response, err error) (*Hit, error) {
	if err != nil {
		return nil, err
	}
	defer r.close()
	if r.status == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if err = r.check(); err != nil {
		return nil, err
	}
	var hit Hit
	if err = r.decode(&hit); err != nil {
		return nil, err
	}
	if !hit.Found {
		return nil, ErrNotFound
	}
	return &hit, nil
}

type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []map[string]struct {
		ID     string `json:"_id"`
		Status int    `json:"status"`
		Error  *struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error"`
	} `json:"items"`
}

// bulkResult fails on request error and on any failed item
func bulkResult(r *response, err error) error {
	if err != nil {
		return err
	}
	defer r.close()
	if err = r.check(); err != nil {
		return err
	}
	var res bulkResponse
	if err = r.decode(&res); err != nil {
		return err
	}
	if !res.Errors {
		return nil
	}
	errs := new(multierror.Error)
	for i, item := range res.Items {
		for action, v := range item {
			if v.Error == nil {
				continue
			}
			errs = multierror.Append(errs, errors.Errorf("item %d, %s %q: %d %s: %s",
				i, action, v.ID, v.Status, v.Error.Type, v.Error.Reason))
		}
	}
	if errs.Len() == 0 {
		return errors.New("bulk request has failed items")
	}
	return errs
}

// ndjson encodes bulk lines, one json document per line
func ndjson(lines []interface{}) (io.Reader, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for i, line := range lines {
		if err := enc.Encode(line); err != nil {
			return nil, errors.Wrapf(err, "cannot encode bulk line %d", i)
		}
	}
	return &buf, nil
}
