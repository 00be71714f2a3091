package catalog

import "github.com/artpar/mailcraft/domain/module"

type definition struct {
	id      string
	label   string
	fields  []module.Field
	aliases map[string][]string

	// markup is a text/template over the values map; raw names a field
	// emitted verbatim instead.
	markup string
	raw    string
}

func text(id, label string) module.Field {
	return module.Field{ID: id, Label: label, Input: module.InputText}
}

var definitions = []definition{
	{
		id:     KindTableWrapper,
		label:  "Table Section",
		fields: []module.Field{{ID: "bg", Label: "Background Color", Input: module.InputColor}},
	},
	{
		id:    KindImageFullWidth,
		label: "Full Width Image",
		fields: []module.Field{
			text("image", "Image"),
			text("image_title", "Image Title"),
			text("link", "Link URL"),
			text("link_alias", "Link Alias"),
			text("alt", "Alt Text"),
		},
		aliases: map[string][]string{"image_title": {"link_alias"}},
		markup: `<tr>
  <td align="center">
    <a href="{{.link}}" alias="{{.link_alias}}" title="{{.image_title}}">
      <img src="{{img .image}}" alt="{{.alt}}" width="640" />
    </a>
  </td>
</tr>`,
	},
	{
		id:    KindImageGrid,
		label: "2-Col Image",
		fields: []module.Field{
			text("image_left", "Left Image"),
			text("title_left", "Left Title"),
			text("alias_left", "Left Alias"),
			text("link_left", "Left URL"),
			text("alt_left", "Left Alt"),
			text("image_right", "Right Image"),
			text("title_right", "Right Title"),
			text("alias_right", "Right Alias"),
			text("link_right", "Right URL"),
			text("alt_right", "Right Alt"),
		},
		aliases: map[string][]string{
			"title_left":  {"alias_left"},
			"title_right": {"alias_right"},
		},
		markup: `<tr>
  <td align="center">
    <table width="100%">
      <tr>
        <td>
          <a href="{{.link_left}}" alias="{{.alias_left}}">
            <img src="{{img .image_left}}" alt="{{.alt_left}}" width="285" />
          </a>
        </td>
        <td>
          <a href="{{.link_right}}" alias="{{.alias_right}}">
            <img src="{{img .image_right}}" alt="{{.alt_right}}" width="285" />
          </a>
        </td>
      </tr>
    </table>
  </td>
</tr>`,
	},
	{
		id:    KindImageGridCTA,
		label: "2-Col Image + CTA",
		fields: []module.Field{
			text("image1_src", "Left Image"),
			text("image1_title", "Left Title"),
			text("image1_alias", "Left Alias"),
			text("image1_link", "Left URL"),
			text("image1_alt", "Left Alt"),
			text("image1_btn_title", "Left Button Title"),
			text("image1_btn_alias", "Left Button Alias"),
			text("image1_btn_link", "Left Button URL"),
			text("image2_src", "Right Image"),
			text("image2_title", "Right Title"),
			text("image2_alias", "Right Alias"),
			text("image2_link", "Right URL"),
			text("image2_alt", "Right Alt"),
			text("image2_btn_title", "Right Button Title"),
			text("image2_btn_alias", "Right Button Alias"),
			text("image2_btn_link", "Right Button URL"),
		},
		aliases: map[string][]string{
			"image1_title":     {"image1_alias"},
			"image2_title":     {"image2_alias"},
			"image1_btn_title": {"image1_btn_alias"},
			"image2_btn_title": {"image2_btn_alias"},
		},
		markup: `<!-- CTA GRID -->`,
	},
	{
		id:    KindCTAButton,
		label: "White Button",
		fields: []module.Field{
			text("title", "Title"),
			text("url", "URL"),
			text("alias", "Alias"),
		},
		aliases: map[string][]string{"title": {"alias"}},
		markup: `<tr><td align="center">
<a href="{{.url}}" alias="{{.alias}}"
style="background:#fff;border:3px solid;padding:12px 18px;display:inline-block">
{{.title}}
</a>
</td></tr>`,
	},
	{
		id:     KindAMPscriptBlock,
		label:  "AMPscript Block",
		fields: []module.Field{{ID: "code", Label: "AMPscript", Input: module.InputCode}},
		raw:    "code",
	},
	{
		id:     KindCountrySwitcher,
		label:  "AMPscript Country Switcher",
		fields: []module.Field{{ID: "note", Label: "Drag modules into US, CA, AU, Default buckets.", Input: module.InputNote}},
	},
}
