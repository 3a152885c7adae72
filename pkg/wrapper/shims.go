package wrapper

import (
	"path/filepath"

	"github.com/blacktop/zigbuild/internal/utils"
)

const fcntlMap = `GLIBC_2.2.5 {
    fcntl;
};
`

// redirects fcntl64 to the pre 2.28 fcntl symbol
const fcntlHeader = `#ifdef __ASSEMBLER__
.symver fcntl64, fcntl@GLIBC_2.2.5
#else
__asm__(".symver fcntl64, fcntl@GLIBC_2.2.5");
#endif
`

// musl 1.2.4 dropped the LFS64 symbols that older libc crates still link against
const muslWeakSymbols = `PROVIDE (creat64 = creat);
PROVIDE (fallocate64 = fallocate);
PROVIDE (fopen64 = fopen);
PROVIDE (freopen64 = freopen);
PROVIDE (fseeko64 = fseeko);
PROVIDE (fstat64 = fstat);
PROVIDE (fstatat64 = fstatat);
PROVIDE (fstatfs64 = fstatfs);
PROVIDE (fstatvfs64 = fstatvfs);
PROVIDE (ftello64 = ftello);
PROVIDE (ftruncate64 = ftruncate);
PROVIDE (getrlimit64 = getrlimit);
PROVIDE (lockf64 = lockf);
PROVIDE (lseek64 = lseek);
PROVIDE (lstat64 = lstat);
PROVIDE (mmap64 = mmap);
PROVIDE (open64 = open);
PROVIDE (openat64 = openat);
PROVIDE (posix_fadvise64 = posix_fadvise);
PROVIDE (posix_fallocate64 = posix_fallocate);
PROVIDE (pread64 = pread);
PROVIDE (preadv64 = preadv);
PROVIDE (prlimit64 = prlimit);
PROVIDE (pwrite64 = pwrite);
PROVIDE (pwritev64 = pwritev);
PROVIDE (readdir64 = readdir);
PROVIDE (readdir64_r = readdir_r);
PROVIDE (sendfile64 = sendfile);
PROVIDE (setrlimit64 = setrlimit);
PROVIDE (stat64 = stat);
PROVIDE (statfs64 = statfs);
PROVIDE (statvfs64 = statvfs);
PROVIDE (tmpfile64 = tmpfile);
PROVIDE (truncate64 = truncate);
`

func writeFcntlShim(dir string) (header, versionScript string, err error) {
	header = filepath.Join(dir, "fcntl.h")
	versionScript = filepath.Join(dir, "fcntl.map")
	if _, err := utils.WriteIfChanged(header, []byte(fcntlHeader), 0o644); err != nil {
		return "", "", err
	}
	if _, err := utils.WriteIfChanged(versionScript, []byte(fcntlMap), 0o644); err != nil {
		return "", "", err
	}
	return header, versionScript, nil
}

func writeMuslWeakSymbols(dir string) (string, error) {
	path := filepath.Join(dir, "musl_weak_symbols_map.ld")
	if _, err := utils.WriteIfChanged(path, []byte(muslWeakSymbols), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
