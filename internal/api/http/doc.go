/*
Package http exposes grain views over a JSON API.

Routes:

	POST   /api/views                  create a view {grain_id | token, path, query, hash}
	GET    /api/views                  list the viewer's views and registry stats
	GET    /api/views/:id              view snapshot
	DELETE /api/views/:id              close a view
	POST   /api/views/:id/open         start opening the session (202)
	POST   /api/views/:id/reveal       {reveal: bool}
	POST   /api/views/:id/focus        bring a view to the foreground
	PUT    /api/views/:id/title        {title}
	PUT    /api/views/:id/frame-title  {title | null}

The viewer is read from the X-Sandstorm-User-Id header; requests without it
act as a logged-out viewer. A view can only be used by the viewer it was
created for. Opening a session is asynchronous: clients poll GET /:id, and
a view id superseded by a redirect answers 303 with the replacing view.
*/
package http
