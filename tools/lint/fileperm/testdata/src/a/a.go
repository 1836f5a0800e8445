package a

import "os"

const ownerOnly = 0o600

func writes() {
	_ = os.WriteFile("a.txt", nil, 0o600) // want `use a file permission constant like 'fileutil.ReadWriteUserPermission' instead of hardcoded '0o600'`
	_ = os.WriteFile("b.txt", nil, 0644)  // want `use a file permission constant like 'fileutil.ReadWriteUserReadOthers' instead of hardcoded '0644'`
	_ = os.MkdirAll("dir", 0o755)         // want `use a file permission constant like 'fileutil.ReadWriteExecuteUserReadExecuteOthers' instead of hardcoded '0o755'`
	_ = os.Mkdir("dir2", 0o700)
	_ = os.WriteFile("c.txt", nil, ownerOnly)
	f, _ := os.OpenFile("d.txt", os.O_CREATE, 0o600) // want `use a file permission constant like 'fileutil.ReadWriteUserPermission'`
	_ = f
}
