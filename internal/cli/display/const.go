// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package display

const (
	Tool       = "composa"
	BannerBlue = `
    oooooo     oooooo    ooo     oooo
  0oo       o0o      0o0   0oo  o0  0o
 ooo       0oo        oo0    o00    oo0
 ooo      oo0          oo    oo      oo
 ooo      oo           oo    oo      oo
 ooo      oo0          oo    oo      oo
 ooo       0oo        oo0    oo      oo
  0oo        o00    00o      oo      oo
    oooooo0    oooooo        o0      oo
`
	BannerGold = `
 oooooo     oooo      ooo
0o    00   0o  0o    0o 00
 o0o      0o    oo   o0  o0
   o0oo   oo    oo   o0o0o
      o00 oo    oo   oo
0o    o00  o0  0o    o0  o0
 oooooo     oooo     o0   o0   vversion
`
)
