// Package plugin holds the endpoints lws serves out of the box.
package plugin

import (
	"fmt"
	"io/fs"

	"lite-web-server/application/http"
	"lite-web-server/application/http/actor/server"
	"lite-web-server/application/http/status"

	"github.com/pkg/errors"
)

const defaultPage = "<html><body><h>Enjoy your webserver!</h><br/><br/>" +
	"<ul style=\"list-style-type:circle\">" +
	"<li><a href=\"/hello\"> echo hello message </a></li>" +
	"<li><a href=\"/version\"> echo lws version </a></li>" +
	"<li><a href=\"/show.jpg\"> show picture </a></li>" +
	"<li><a href=\"/binary.tgz\"> download file </a></li>" +
	"</ul>" +
	"</body></html>"

const helloPage = "<html><body><h>Hello LWS!</h><br/><br/></body></html>"

// Register binds every built-in endpoint.
// Static files are looked up in fsys.
func Register(r *server.Registry, fsys fs.FS, version string) error {
	endpoints := []struct {
		path    string
		handler server.Handler
	}{
		{"/", Default()},
		{"/hello", Hello()},
		{"/version", Version(version)},
		{"/show.jpg", Static(fsys, http.ContentTypeJPEG)},
		{"/binary.tgz", Static(fsys, http.ContentTypeOctetStream)},
	}

	for _, e := range endpoints {
		if err := r.Register(e.path, e.handler); err != nil {
			return errors.Wrapf(err, "registering %s", e.path)
		}
	}

	return nil
}

// page replies body as html to requests and 400 to anything else.
func page(body []byte) server.HandlerFunc {
	return func(c *server.HandleContext, ev server.Event, _ *http.Message) error {
		if ev != server.EventHTTPRequest {
			return c.RespondHeader(status.BadRequest.Code)
		}
		return c.Respond(status.OK.Code, http.ContentTypeHTML, body)
	}
}

// Default lists the other endpoints.
func Default() server.HandlerFunc { return page([]byte(defaultPage)) }

func Hello() server.HandlerFunc { return page([]byte(helloPage)) }

func Version(version string) server.HandlerFunc {
	return page(fmt.Appendf(nil,
		"<html><body><h>LWS - version[%s]</h><br/><br/></body></html>", version))
}
