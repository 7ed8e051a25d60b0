// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rewrite

import "testing"

func TestReferences(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		fileMap map[string]string
		prefix  string
		want    string
	}{
		{
			name:    "image literal",
			text:    "before ![cat](photo.png) after",
			fileMap: map[string]string{"photo.png": "0A1B2C3D-photo.png"},
			prefix:  "assets/",
			want:    "before ![cat](assets/0A1B2C3D-photo.png) after",
		},
		{
			name:    "link literal",
			text:    "see [the report](report.pdf)",
			fileMap: map[string]string{"report.pdf": "55667788-report.pdf"},
			prefix:  "assets/",
			want:    "see [the report](assets/55667788-report.pdf)",
		},
		{
			name:    "link with metadata comment",
			text:    `[q3](q3.pdf)<!--{"type":"file"}-->`,
			fileMap: map[string]string{"q3.pdf": "55667788-q3.pdf"},
			prefix:  "assets/",
			want:    `[q3](assets/55667788-q3.pdf)<!--{"type":"file"}-->`,
		},
		{
			name:    "space-encoded reference",
			text:    "![scan](my%20scan.jpeg)",
			fileMap: map[string]string{"my scan.jpeg": "11112222-my scan.jpeg"},
			prefix:  "assets/",
			want:    "![scan](assets/11112222-my%20scan.jpeg)",
		},
		{
			name:    "fully percent-encoded reference",
			text:    "see [cv](r%C3%A9sum%C3%A9.pdf) here",
			fileMap: map[string]string{"résumé.pdf": "0A0A0A0A-résumé.pdf"},
			prefix:  "assets/",
			want:    "see [cv](assets/0A0A0A0A-résumé.pdf) here",
		},
		{
			name:    "empty alt text",
			text:    "![](diagram.svg)",
			fileMap: map[string]string{"diagram.svg": "99887766-diagram.svg"},
			prefix:  "assets/",
			want:    "![](assets/99887766-diagram.svg)",
		},
		{
			name: "every reference to a file rewritten",
			text: "![a](pic.png)\ntext\n![b](pic.png)\n[c](pic.png)",
			fileMap: map[string]string{
				"pic.png": "ABCD1234-pic.png",
			},
			prefix: "assets/",
			want:   "![a](assets/ABCD1234-pic.png)\ntext\n![b](assets/ABCD1234-pic.png)\n[c](assets/ABCD1234-pic.png)",
		},
		{
			name: "several files in one document",
			text: "![x](one.png) and [y](two.pdf)",
			fileMap: map[string]string{
				"one.png": "11111111-one.png",
				"two.pdf": "22222222-two.pdf",
			},
			prefix: "assets/",
			want:   "![x](assets/11111111-one.png) and [y](assets/22222222-two.pdf)",
		},
		{
			name:    "image and link to the same file",
			text:    "![img](shared.png)\n[file](shared.png)",
			fileMap: map[string]string{"shared.png": "AAAA1111-shared.png"},
			prefix:  "assets/",
			want:    "![img](assets/AAAA1111-shared.png)\n[file](assets/AAAA1111-shared.png)",
		},
		{
			name:    "parent-relative prefix",
			text:    "![cat](photo.png)",
			fileMap: map[string]string{"photo.png": "0A1B2C3D-photo.png"},
			prefix:  "../assets/",
			want:    "![cat](../assets/0A1B2C3D-photo.png)",
		},
		{
			name:    "unmapped reference untouched",
			text:    "![cat](other.png)",
			fileMap: map[string]string{"photo.png": "0A1B2C3D-photo.png"},
			prefix:  "assets/",
			want:    "![cat](other.png)",
		},
		{
			name:    "reference-style definition untouched",
			text:    "[ref]: photo.png",
			fileMap: map[string]string{"photo.png": "0A1B2C3D-photo.png"},
			prefix:  "assets/",
			want:    "[ref]: photo.png",
		},
		{
			name:    "filename with regex metacharacters",
			text:    "![x](my (1).png)",
			fileMap: map[string]string{"my (1).png": "AAAA1111-my (1).png"},
			prefix:  "assets/",
			want:    "![x](assets/AAAA1111-my%20(1).png)",
		},
		{
			name:    "dollar sign in replacement kept literal",
			text:    "[p](price.pdf)",
			fileMap: map[string]string{"price.pdf": "12345678-price$list.pdf"},
			prefix:  "assets/",
			want:    "[p](assets/12345678-price$list.pdf)",
		},
		{
			name:    "detached comment not captured but link rewritten",
			text:    "[d](f.pdf) <!--c-->",
			fileMap: map[string]string{"f.pdf": "ABCD1234-f.pdf"},
			prefix:  "assets/",
			want:    "[d](assets/ABCD1234-f.pdf) <!--c-->",
		},
		{
			name:    "multi-line comment left in place",
			text:    "[d](f.pdf)<!--a\nb-->",
			fileMap: map[string]string{"f.pdf": "ABCD1234-f.pdf"},
			prefix:  "assets/",
			want:    "[d](assets/ABCD1234-f.pdf)<!--a\nb-->",
		},
		{
			name:    "image keeps trailing comment as text",
			text:    "![i](f.png)<!--c-->",
			fileMap: map[string]string{"f.png": "ABCD1234-f.png"},
			prefix:  "assets/",
			want:    "![i](assets/ABCD1234-f.png)<!--c-->",
		},
		{
			name:    "label kept verbatim",
			text:    "[A label, with *markdown*](doc.pdf)",
			fileMap: map[string]string{"doc.pdf": "00FF00FF-doc.pdf"},
			prefix:  "assets/",
			want:    "[A label, with *markdown*](assets/00FF00FF-doc.pdf)",
		},
		{
			name:    "empty text",
			text:    "",
			fileMap: map[string]string{"photo.png": "0A1B2C3D-photo.png"},
			prefix:  "assets/",
			want:    "",
		},
		{
			name:    "empty map",
			text:    "![cat](photo.png)",
			fileMap: nil,
			prefix:  "assets/",
			want:    "![cat](photo.png)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := References(tt.text, tt.fileMap, tt.prefix)
			if got != tt.want {
				t.Errorf("References() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReferencesSecondPassIsNoop(t *testing.T) {
	fileMap := map[string]string{"photo.png": "0A1B2C3D-photo.png"}

	once := References("![cat](photo.png)", fileMap, "assets/")
	twice := References(once, fileMap, "assets/")

	if once != twice {
		t.Errorf("second pass changed the text: %q -> %q", once, twice)
	}
}
