package cffsubr

import (
	"fmt"

	xsfnt "golang.org/x/image/font/sfnt"
)

// Options are the options for SubroutinizeFont.
type Options struct {
	CFFVersion     int  // 1 or 2, zero keeps the CFF version of the input font
	DropGlyphNames bool // don't store glyph names in the post table of CFF2 fonts
	Verify         bool // parse the result again, only for CFF output
}

// SubroutinizeFont subroutinizes the CFF or CFF2 table of an OpenType font and returns the font in the SFNT format. WOFF, WOFF2, and EOT input is converted to SFNT first. Since CFF2 fonts store no glyph names, names are moved to a version 2 post table when converting to CFF2, or dropped when DropGlyphNames is set. CFF output always gets a version 3 post table as the names are stored in the charset.
func SubroutinizeFont(b []byte, options Options) ([]byte, error) {
	b, err := ToSFNT(b)
	if err != nil {
		return nil, err
	}
	sfnt, err := ParseSFNT(b)
	if err != nil {
		return nil, err
	} else if !sfnt.IsCFF {
		return nil, fmt.Errorf("font has no CFF outlines")
	}

	tag, err := sfnt.CFFTableTag()
	if err != nil {
		return nil, err
	}
	version := options.CFFVersion
	if version == 0 {
		if version, err = sfnt.CFFVersion(); err != nil {
			return nil, err
		}
	} else if version != 1 && version != 2 {
		return nil, fmt.Errorf("unsupported CFF version %d", version)
	}

	var names []string
	if version == 2 && !options.DropGlyphNames {
		if names, err = sfnt.GlyphNames(); err != nil {
			return nil, err
		}
	}

	format := "-cff"
	newTag := "CFF "
	if version == 2 {
		format = "-cff2"
		newTag = "CFF2"
	}
	cff, err := runSubroutinizer(b, format)
	if err != nil {
		return nil, err
	} else if outVersion := cffTableVersion(cff); outVersion != version {
		return nil, fmt.Errorf("%s: tx returned a table of version %d", newTag, outVersion)
	}
	delete(sfnt.Tables, tag)
	sfnt.Tables[newTag] = cff

	if post, ok := sfnt.Tables["post"]; ok {
		if names != nil {
			post, err = writePostNames(post, names)
		} else {
			post, err = writePostNoNames(post)
		}
		if err != nil {
			return nil, err
		}
		sfnt.Tables["post"] = post
	}
	b = sfnt.Write()

	// x/image only reads CFF version 1
	if options.Verify && version == 1 {
		if err := verifyFont(b, int(sfnt.NumGlyphs())); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func verifyFont(b []byte, numGlyphs int) error {
	f, err := xsfnt.Parse(b)
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	} else if f.NumGlyphs() != numGlyphs {
		return fmt.Errorf("verify: number of glyphs %d does not match maxp table %d", f.NumGlyphs(), numGlyphs)
	}
	return nil
}
