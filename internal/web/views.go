package web

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/JonMunkholm/tableform/internal/core"
	"github.com/JonMunkholm/tableform/internal/tableform"
	"github.com/a-h/templ"
)

// inputPrefix starts the name of every text input posted by the table form:
// "v.<row handle>.<column key>".
const inputPrefix = "v."

func inputName(handle, key string) string { return inputPrefix + handle + "." + key }

func formURL(formKey string) string { return "/forms/" + url.PathEscape(formKey) }

func sessionURL(formKey, id string) string {
	return formURL(formKey) + "/s/" + url.PathEscape(id)
}

func rowURL(base, handle string) string { return base + "/rows/" + url.PathEscape(handle) }

func esc(s string) string { return templ.EscapeString(s) }

// htmlWriter keeps the first write error so components can print freely.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (hw *htmlWriter) printf(format string, args ...any) {
	if hw.err != nil {
		return
	}
	_, hw.err = fmt.Fprintf(hw.w, format, args...)
}

func (hw *htmlWriter) render(ctx context.Context, c templ.Component) {
	if hw.err != nil {
		return
	}
	hw.err = c.Render(ctx, hw.w)
}

// pageLayout wraps body in the HTML document.
func pageLayout(title, htmxSrc string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.printf(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		hw.printf(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		hw.printf(`<title>%s</title>`, esc(title))
		hw.printf(`<link rel="stylesheet" href="/static/tableform.css">`)
		if htmxSrc != "" {
			hw.printf(`<script src="%s"></script>`, esc(htmxSrc))
		}
		hw.printf(`</head><body>`)
		hw.render(ctx, body)
		hw.printf(`</body></html>`)
		return hw.err
	})
}

// formList renders the index of registered forms.
func formList(forms []core.FormInfo) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.printf(`<h1>Forms</h1>`)
		if len(forms) == 0 {
			hw.printf(`<p>No forms are registered.</p>`)
			return hw.err
		}
		hw.printf(`<ul class="forms">`)
		for _, f := range forms {
			hw.printf(`<li><a href="%s">%s</a>`, esc(formURL(f.Key)), esc(f.Label))
			if f.Description != "" {
				hw.printf(` <span class="description">%s</span>`, esc(f.Description))
			}
			hw.printf(`</li>`)
		}
		hw.printf(`</ul>`)
		return hw.err
	})
}

// errorAlert renders a user-facing error message.
func errorAlert(msg core.UserMessage) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.printf(`<div class="alert" role="alert"><strong>%s</strong>`, esc(msg.Message))
		if msg.Action != "" {
			hw.printf(` %s`, esc(msg.Action))
		}
		hw.printf(` <span class="code">(Code: %s)</span></div>`, esc(msg.Code))
		return hw.err
	})
}

// sessionPage is the full page around a session form.
func sessionPage(view core.SessionView, alert *core.UserMessage) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.printf(`<p><a href="/">Forms</a></p><h1>%s</h1>`, esc(view.Form.Label))
		if view.Form.Description != "" {
			hw.printf(`<p class="description">%s</p>`, esc(view.Form.Description))
		}
		hw.render(ctx, sessionForm(view, alert))
		hw.printf(`<p class="expires">Unsaved changes are discarded after %s.</p>`,
			esc(view.ExpiresAt.UTC().Format(time.RFC1123)))
		return hw.err
	})
}

// sessionForm renders the editable table. Every action button posts the
// whole form, so values typed into any row travel with each request. Without
// JavaScript the buttons work through formaction; with htmx the form swaps
// itself with the response fragment.
func sessionForm(view core.SessionView, alert *core.UserMessage) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		base := sessionURL(view.Form.Key, view.ID)

		hw.printf(`<form id="tableform" method="post" action="%[1]s/submit" hx-post="%[1]s/submit" hx-target="this" hx-swap="outerHTML">`, esc(base))
		hw.printf(`<input type="hidden" name="%s" value="%s">`, esc(view.Output.Name), esc(view.Output.Value))

		if alert != nil {
			hw.render(ctx, errorAlert(*alert))
		}
		if len(view.Failed) > 0 {
			hw.printf(`<ul class="failures">`)
			for _, f := range view.Failed {
				hw.printf(`<li>Row %d: invalid value &#34;%s&#34; for %s</li>`, f.Row+1, esc(f.Value), esc(f.Column))
			}
			hw.printf(`</ul>`)
		}
		if view.Saved {
			hw.printf(`<div class="saved" role="status">Saved.</div>`)
		}

		hw.printf(`<table id="%s" class="jstableform"><thead><tr>`, esc(tableform.DefaultClassPrefix+view.Form.Key))
		for _, col := range view.Columns {
			hw.printf(`<td class="%s">%s</td>`, esc(col.Class), esc(col.Label))
		}
		hw.printf(`</tr></thead><tbody>`)
		if len(view.Rows) == 0 {
			hw.printf(`<tr class="empty"><td colspan="%d">No rows.</td></tr>`, len(view.Columns))
		}
		for _, row := range view.Rows {
			hw.render(ctx, tableRow(base, row))
		}
		hw.printf(`</tbody></table>`)

		hw.printf(`<div class="actions">`)
		hw.printf(`<button type="submit" formaction="%[1]s/rows" hx-post="%[1]s/rows">Add row</button>`, esc(base))
		hw.printf(`<button type="submit">Save</button>`)
		hw.printf(`<button type="submit" formaction="%[1]s/close" hx-post="%[1]s/close">Discard</button>`, esc(base))
		hw.printf(`</div></form>`)
		return hw.err
	})
}

func tableRow(base string, row core.RowView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		rurl := rowURL(base, row.Handle)

		hw.printf(`<tr name="%s" data-handle="%s" class="%s">`,
			esc(tableform.DefaultClassPrefix+row.ID), esc(row.Handle), esc(tableform.DefaultClassPrefix+"state-"+row.State.String()))

		for _, cell := range row.Cells {
			cellName := esc(tableform.DefaultClassPrefix + "key-" + cell.Key)
			invalid := ""
			if cell.Invalid {
				invalid = ` class="` + tableform.DefaultClassPrefix + `invalid" aria-invalid="true"`
			}

			switch cell.Widget() {
			case tableform.WidgetTextInput:
				if !row.Editable() {
					hw.printf(`<td name="%s">%s</td>`, cellName, esc(cell.Text))
					continue
				}
				hw.printf(`<td name="%s"><input type="text" name="%s" value="%s"%s hx-post="%s/input/%s?blur=1" hx-trigger="change"></td>`,
					cellName, esc(inputName(row.Handle, cell.Key)), esc(cell.Text), invalid, esc(rurl), esc(url.PathEscape(cell.Key)))

			case tableform.WidgetTextArea:
				// The parser drops a newline right after <textarea>, so one is
				// always written to keep a leading newline in the value.
				if !row.Editable() {
					hw.printf(`<td name="%s">%s</td>`, cellName, esc(cell.Text))
					continue
				}
				hw.printf(`<td name="%s"><textarea name="%s" rows="3"%s hx-post="%s/input/%s?blur=1" hx-trigger="change">
%s</textarea></td>`,
					cellName, esc(inputName(row.Handle, cell.Key)), invalid, esc(rurl), esc(url.PathEscape(cell.Key)), esc(cell.Text))

			case tableform.WidgetToggle:
				status, label := boolDisplay(cell)
				if !row.Editable() {
					hw.printf(`<td name="%s"%s>%s</td>`, cellName, status, esc(label))
					continue
				}
				hw.printf(`<td name="%s"%s><button type="submit" class="link" formaction="%[3]s/toggle/%[4]s" hx-post="%[3]s/toggle/%[4]s">%[5]s</button></td>`,
					cellName, status, esc(rurl), esc(url.PathEscape(cell.Key)), esc(label))

			case tableform.WidgetEditLink:
				switch row.State {
				case tableform.StateViewing:
					hw.printf(`<td><button type="submit" class="link" formaction="%[1]s/edit" hx-post="%[1]s/edit">edit</button></td>`, esc(rurl))
				case tableform.StateEditing:
					hw.printf(`<td><button type="submit" class="link" formaction="%[1]s/cancel" hx-post="%[1]s/cancel">cancel</button></td>`, esc(rurl))
				default:
					hw.printf(`<td></td>`)
				}

			case tableform.WidgetDeleteLink:
				hw.printf(`<td><button type="submit" class="link" formaction="%[1]s/delete" hx-post="%[1]s/delete">delete</button></td>`, esc(rurl))
			}
		}
		hw.printf(`</tr>`)
		return hw.err
	})
}

// boolDisplay returns the status class attribute and label of a boolean cell.
// Unset cells show their stored text.
func boolDisplay(cell core.CellView) (string, string) {
	switch cell.Bool {
	case tableform.BoolTrue:
		return ` class="` + tableform.DefaultClassPrefix + `status-yes"`, "yes"
	case tableform.BoolFalse:
		return ` class="` + tableform.DefaultClassPrefix + `status-no"`, "no"
	default:
		return "", cell.Text
	}
}
